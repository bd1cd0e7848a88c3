package mime

import (
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/wireparse/http/status"
	"github.com/stretchr/testify/require"
)

func TestComplies(t *testing.T) {
	for _, tc := range []string{"", JSON, JSON + ";", JSON + ";param"} {
		require.True(t, Complies(JSON, tc))
	}
}

func TestByFilename(t *testing.T) {
	require.Equal(t, PNG, ByFilename("profile.PNG"))
	require.Equal(t, Plain, ByFilename("dir/notes.txt"))
	require.Equal(t, OctetStream, ByFilename("blob"))
}

func TestBoundary(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, tc := range []struct {
			ContentType, Want string
		}{
			{"multipart/form-data; boundary=XYZ", "XYZ"},
			{"Multipart/Mixed;boundary=\"with space inside\"", "with space inside"},
			{"multipart/form-data; charset=utf-8; BOUNDARY=----WebKitFormBoundary7MA4YWxkTrZu0gW", "----WebKitFormBoundary7MA4YWxkTrZu0gW"},
			{"multipart/form-data; boundary=a", "a"},
		} {
			boundary, err := Boundary(tc.ContentType)
			require.NoError(t, err, tc.ContentType)
			require.Equal(t, tc.Want, boundary)
		}
	})

	t.Run("random", func(t *testing.T) {
		want := uniuri.NewLen(MaxBoundaryLength)
		boundary, err := Boundary(Multipart + "; boundary=" + want)
		require.NoError(t, err)
		require.Equal(t, want, boundary)
	})

	t.Run("not multipart", func(t *testing.T) {
		_, err := Boundary("application/json; boundary=XYZ")
		require.ErrorIs(t, err, status.ErrUnsupportedMediaType)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, contentType := range []string{
			"multipart/form-data",
			"multipart/form-data; boundary=",
			"multipart/form-data; boundary=\"trailing \"",
			"multipart/form-data; boundary=\"unterminated",
			"multipart/form-data; boundary=" + uniuri.NewLen(MaxBoundaryLength+1),
			"multipart/form-data; =XYZ",
		} {
			_, err := Boundary(contentType)
			require.ErrorIs(t, err, status.ErrBadBoundary, contentType)
		}
	})
}

func TestValidBoundary(t *testing.T) {
	require.True(t, ValidBoundary("a"))
	require.True(t, ValidBoundary("a b"))
	require.False(t, ValidBoundary(""))
	require.False(t, ValidBoundary("a "))
	require.False(t, ValidBoundary("a\r\nb"))
	require.False(t, ValidBoundary("caf\xc3\xa9"))
}

func TestDisposition(t *testing.T) {
	t.Run("form field", func(t *testing.T) {
		d, err := Disposition(`form-data; name="username"`)
		require.NoError(t, err)
		require.Equal(t, ContentDisposition{Type: "form-data", Name: "username"}, d)
		require.False(t, d.IsFile())
	})

	t.Run("file", func(t *testing.T) {
		d, err := Disposition(`Form-Data; name="pic"; filename="profile \"1\".png"`)
		require.NoError(t, err)
		require.Equal(t, "form-data", d.Type)
		require.Equal(t, "pic", d.Name)
		require.Equal(t, `profile "1".png`, d.Filename)
		require.True(t, d.IsFile())
	})

	t.Run("extended filename", func(t *testing.T) {
		d, err := Disposition(`attachment; filename*=UTF-8''na%C3%AFve+1.txt; filename="naive.txt"`)
		require.NoError(t, err)
		require.Equal(t, "naïve+1.txt", d.Filename)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, value := range []string{
			"",
			"; name=x",
			"form-data; name",
			`form-data; name="x`,
			"attachment; filename*=koi8-r''abc",
			"attachment; filename*=UTF-8''%zz",
		} {
			_, err := Disposition(value)
			require.Error(t, err, value)
		}
	})
}

func TestCharsetOf(t *testing.T) {
	for _, tc := range []struct {
		ContentType string
		Want        Charset
	}{
		{"text/plain; charset=UTF-8", UTF8},
		{`text/plain; format=flowed; charset="ISO-8859-1"`, Latin1},
		{"text/html", UTF8},
		{"TEXT/PLAIN", UTF8},
		{"image/png", ""},
		{"", ""},
	} {
		require.Equal(t, tc.Want, CharsetOf(tc.ContentType), tc.ContentType)
	}
}
