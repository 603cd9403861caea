package api

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseParts(t *testing.T, form *Form) map[string]*multipart.Part {
	t.Helper()
	body, contentType, err := form.Encode()
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	parts := make(map[string]*multipart.Part)
	contents := make(map[string][]byte)
	r := multipart.NewReader(body, params["boundary"])
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts[p.FormName()] = p
		contents[p.FormName()] = data
	}
	t.Cleanup(func() {})
	// stash contents on the parts map via closure-free trick: re-read below
	for name := range parts {
		parts[name].Header.Set("X-Test-Content", string(contents[name]))
	}
	return parts
}

func TestForm_PlainFields(t *testing.T) {
	form := NewForm().Set("login", "a@b.com").Set("password", "secret1").SetInt("event_id", 7)

	parts := parseParts(t, form)
	require.Len(t, parts, 3)
	assert.Equal(t, "a@b.com", parts["login"].Header.Get("X-Test-Content"))
	assert.Equal(t, "7", parts["event_id"].Header.Get("X-Test-Content"))
}

// A declared file field with no content must still appear in the submission
// as an empty file part, so the server can rely on field presence.
func TestForm_EmptyFilePlaceholder(t *testing.T) {
	form := NewForm().Set("description", "hello").DeclareFile("image")

	parts := parseParts(t, form)
	require.Contains(t, parts, "image")
	assert.Equal(t, "", parts["image"].FileName())
	assert.Equal(t, "", parts["image"].Header.Get("X-Test-Content"))
}

func TestForm_AttachedFileSuppressesPlaceholder(t *testing.T) {
	form := NewForm().
		Set("description", "hello").
		DeclareFile("image").
		File("image", "pic.png", []byte{0x89, 0x50})

	parts := parseParts(t, form)
	require.Contains(t, parts, "image")
	assert.Equal(t, "pic.png", parts["image"].FileName())
	assert.Equal(t, string([]byte{0x89, 0x50}), parts["image"].Header.Get("X-Test-Content"))
}

func TestForm_SetOverwritesKeepingOnePart(t *testing.T) {
	form := NewForm().Set("status", "pending").Set("status", "approved")

	parts := parseParts(t, form)
	require.Len(t, parts, 1)
	assert.Equal(t, "approved", parts["status"].Header.Get("X-Test-Content"))
}
