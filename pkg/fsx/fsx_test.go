package fsx

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueName(t *testing.T) {
	name := UniqueName("resume", "my.cv.pdf")
	assert.Regexp(t, regexp.MustCompile(`^resume/my\.cv_[0-9a-f]{8}\.pdf$`), name)

	name = UniqueName("avatar/", "../../etc/passwd")
	assert.Regexp(t, regexp.MustCompile(`^avatar/passwd_[0-9a-f]{8}$`), name)

	assert.NotEqual(t, UniqueName("resume", "a.pdf"), UniqueName("resume", "a.pdf"))
}

func TestPublicURLRoundTrip(t *testing.T) {
	url := PublicURL("media", "resume/a_1234abcd.pdf")
	assert.Equal(t, "media/resume/a_1234abcd.pdf", url)
	assert.Equal(t, "resume/a_1234abcd.pdf", PathFromURL("media/", url))
	assert.Equal(t, "x", PublicURL("", "x"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("resume/CV_1a2b3c4d.PDF"))
	assert.Equal(t, "image/jpeg", ContentType("avatar/me.jpeg"))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}
