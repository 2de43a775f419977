package obj

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangle = `v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
vn 0.0 0.0 1.0
f 1/0/1 2/0/1 3/0/1
`

func TestParse(t *testing.T) {
	up := mgl32.Vec3{0, 0, 1}
	tests := []struct {
		name string
		src  string
		want Mesh
	}{
		{
			name: "empty",
		},
		{
			name: "triangle",
			src:  triangle,
			want: Mesh{
				{
					{Position: mgl32.Vec3{0, 0, 0}, Normal: up},
					{Position: mgl32.Vec3{1, 0, 0}, Normal: up},
					{Position: mgl32.Vec3{0, 1, 0}, Normal: up},
				},
			},
		},
		{
			name: "quad is kept as-is",
			src: `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`,
			want: Mesh{
				{
					{Position: mgl32.Vec3{0, 0, 0}, Normal: up},
					{Position: mgl32.Vec3{1, 0, 0}, Normal: up},
					{Position: mgl32.Vec3{1, 1, 0}, Normal: up},
					{Position: mgl32.Vec3{0, 1, 0}, Normal: up},
				},
			},
		},
		{
			name: "corner order and normals are preserved",
			src: `vn 1 0 0
vn 0 1 0
v 1 2 3
v 4 5 6
v 7 8 9
f 3/1/2 1/1/1 2/9/2
`,
			want: Mesh{
				{
					{Position: mgl32.Vec3{7, 8, 9}, Normal: mgl32.Vec3{0, 1, 0}},
					{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{1, 0, 0}},
					{Position: mgl32.Vec3{4, 5, 6}, Normal: mgl32.Vec3{0, 1, 0}},
				},
			},
		},
		{
			name: "unknown commands are ignored",
			src: `# a comment
mtllib cube.mtl
o cube
v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.5
vn 0 0 1
usemtl red
s off
f 1/1/1 2/1/1 3/1/1
`,
			want: Mesh{
				{
					{Position: mgl32.Vec3{0, 0, 0}, Normal: up},
					{Position: mgl32.Vec3{1, 0, 0}, Normal: up},
					{Position: mgl32.Vec3{0, 1, 0}, Normal: up},
				},
			},
		},
		{
			name: "CRLF and tabs",
			src:  "v\t1 2 3\r\nvn 0 0 1\r\n  f 1/0/1\t1/0/1 1/0/1  \r\n",
			want: Mesh{
				{
					{Position: mgl32.Vec3{1, 2, 3}, Normal: up},
					{Position: mgl32.Vec3{1, 2, 3}, Normal: up},
					{Position: mgl32.Vec3{1, 2, 3}, Normal: up},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BlankLinesAreSkipped(t *testing.T) {
	spaced := "\n\nv 0.0 0.0 0.0\n   \nv 1.0 0.0 0.0\n\t\nv 0.0 1.0 0.0\n\nvn 0.0 0.0 1.0\n\n\nf 1/0/1 2/0/1 3/0/1\n\n"

	want, err := Parse(strings.NewReader(triangle))
	require.NoError(t, err)
	got, err := Parse(strings.NewReader(spaced))
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "bad float",
			src:     "v 1.0 abc 0.0\n",
			wantErr: ErrMalformedNumber,
			wantMsg: "line 1",
		},
		{
			name:    "bad normal float",
			src:     "v 0 0 0\nvn 0 0 z\n",
			wantErr: ErrMalformedNumber,
			wantMsg: "line 2",
		},
		{
			name:    "too few vertex params",
			src:     "v 1.0 2.0\n",
			wantErr: ErrWrongArity,
		},
		{
			name:    "too many normal params",
			src:     "vn 1.0 2.0 3.0 4.0\n",
			wantErr: ErrWrongArity,
		},
		{
			name:    "reference before declaration",
			src:     "f 1/0/1\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "index zero",
			src:     "v 0 0 0\nvn 0 0 1\nf 0/0/1 1/0/1 1/0/1\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "normal index zero",
			src:     "v 0 0 0\nvn 0 0 1\nf 1/0/0 1/0/1 1/0/1\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "negative index",
			src:     "v 0 0 0\nvn 0 0 1\nf -1/0/1 1/0/1 1/0/1\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "index past end",
			src:     "v 0 0 0\nvn 0 0 1\nf 2/0/1 1/0/1 1/0/1\n",
			wantErr: ErrUnknownReference,
			wantMsg: "line 3",
		},
		{
			name:    "normal declared after use",
			src:     "v 0 0 0\nf 1/0/1 1/0/1 1/0/1\nvn 0 0 1\n",
			wantErr: ErrUnknownReference,
		},
		{
			name:    "missing slashes",
			src:     "v 0 0 0\nvn 0 0 1\nf 1 1 1\n",
			wantErr: ErrMalformedCorner,
		},
		{
			name:    "one slash",
			src:     "v 0 0 0\nvn 0 0 1\nf 1/1 1/1 1/1\n",
			wantErr: ErrMalformedCorner,
		},
		{
			name:    "too many slashes",
			src:     "v 0 0 0\nvn 0 0 1\nf 1/1/1/1 1/1/1 1/1/1\n",
			wantErr: ErrMalformedCorner,
		},
		{
			name:    "non-integer vertex index",
			src:     "v 0 0 0\nvn 0 0 1\nf a/0/1 1/0/1 1/0/1\n",
			wantErr: ErrMalformedCorner,
		},
		{
			name:    "non-integer normal index",
			src:     "v 0 0 0\nvn 0 0 1\nf 1/0/1.5 1/0/1 1/0/1\n",
			wantErr: ErrMalformedCorner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.src))
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseWith_TrianglesOnly(t *testing.T) {
	quad := "v 0 0 0\nvn 0 0 1\nf 1/0/1 1/0/1 1/0/1 1/0/1\n"

	_, err := ParseWith(strings.NewReader(quad), ParseOptions{TrianglesOnly: true})
	assert.True(t, errors.Is(err, ErrWrongArity), "got %v", err)

	m, err := ParseWith(strings.NewReader(triangle), ParseOptions{TrianglesOnly: true})
	require.NoError(t, err)
	assert.Len(t, m, 1)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{})
	assert.True(t, errors.Is(err, ErrIO), "got %v", err)
}

func TestMeshHelpers(t *testing.T) {
	tri := make(Face, 3)
	quad := make(Face, 4)

	tests := []struct {
		name          string
		m             Mesh
		wantCorners   int
		wantCounts    []int
		wantTriangles bool
	}{
		{
			name:          "empty",
			wantCounts:    []int{},
			wantTriangles: true,
		},
		{
			name:          "triangles",
			m:             Mesh{tri, tri},
			wantCorners:   6,
			wantCounts:    []int{3, 3},
			wantTriangles: true,
		},
		{
			name:        "mixed",
			m:           Mesh{tri, quad},
			wantCorners: 7,
			wantCounts:  []int{3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCorners, tt.m.NumCorners())
			assert.Equal(t, tt.wantCounts, tt.m.CornerCounts())
			assert.Equal(t, tt.wantTriangles, tt.m.IsTriangles())
		})
	}
}
