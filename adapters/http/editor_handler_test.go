package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portfolioUC "github.com/khoahotran/portli/internal/application/usecase/portfolio"
)

func multipartEditorRequest(t *testing.T, fields map[string]string, fileName string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile(fieldProfileImageFile, fileName)
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/edit-portfolio", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestParseEditForm_EmptyFilePartIsNotAField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = multipartEditorRequest(t, map[string]string{"full_name": "A B", "action": "save"}, "", nil)

	input, cleanup, err := parseEditForm(c)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, []portfolioUC.FieldUpdate{{Name: "full_name", Value: "A B"}}, input.Fields)
	assert.Equal(t, portfolioUC.ActionSave, input.Action.Kind)
	assert.Nil(t, input.ProfileImage)
}

func TestParseEditForm_FileIsReadAsUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = multipartEditorRequest(t, map[string]string{"action": "save"}, "me.png", []byte("png-bytes"))

	input, cleanup, err := parseEditForm(c)
	require.NoError(t, err)
	defer cleanup()

	assert.Empty(t, input.Fields)
	require.NotNil(t, input.ProfileImage)
	got, err := io.ReadAll(input.ProfileImage)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))
}
