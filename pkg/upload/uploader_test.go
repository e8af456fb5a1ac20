package upload_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadkit/pkg/destination"
	"github.com/dmitrymomot/uploadkit/pkg/filesize"
	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/mimepolicy"
	"github.com/dmitrymomot/uploadkit/pkg/transfer"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

func TestNew(t *testing.T) {
	t.Parallel()

	u := upload.New(nil)
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(wd)+string(filepath.Separator), u.Destination())
	assert.False(t, u.Status())
	assert.Empty(t, u.Log())

	info := u.Info()
	assert.Equal(t, "0B", info.SizeFormatted)
	assert.Empty(t, info.AllowedMIMETypes)
}

func TestSetInput(t *testing.T) {
	t.Parallel()

	u := upload.New(nil)
	err := u.SetInput("")
	assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
	assert.ErrorIs(t, err, upload.ErrInvalidInput)

	require.NoError(t, u.SetInput("avatar"))
	assert.Contains(t, messagesOf(u.Log()), "capture set")
}

func TestSetFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"pattern", "copy-%s", false},
		{"fixed", "avatar.png", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"dot", ".", true},
		{"parent", "..", true},
		{"slash", "a/b.%s", true},
		{"backslash", `a\b.%s`, true},
		{"nul", "a\x00.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := upload.New(nil)
			err := u.SetFilename(tt.pattern)
			if tt.wantErr {
				assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
				assert.ErrorIs(t, err, upload.ErrInvalidFilename)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSetAutoFilename(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	u := upload.New(nil, upload.WithClock(func() time.Time { return now }))
	u.SetAutoFilename()

	messages := messagesOf(u.Log())
	assert.Equal(t, []string{"automatic filename enabled", "filename set"}, messages)

	value, ok := u.Log()[1].Attr("filename")
	require.True(t, ok)
	assert.Regexp(t, `^[0-9a-f]{40}1700000000\.%s$`, value.String())
}

func TestSetMaxFileSize(t *testing.T) {
	t.Parallel()

	t.Run("without host ceiling", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		require.NoError(t, u.SetMaxFileSize("10G"))

		last := u.Log()[len(u.Log())-1]
		assert.Equal(t, "maximum allowed size set", last.Message)
		n, ok := last.Attr("bytes")
		require.True(t, ok)
		assert.Equal(t, int64(10*1024*1024*1024), n.Int64())
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)

		err := u.SetMaxFileSize("lots")
		assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
		assert.ErrorIs(t, err, filesize.ErrInvalidSize)

		err = u.SetMaxFileSize("-1M")
		assert.ErrorIs(t, err, filesize.ErrNegativeSize)
	})

	t.Run("host ceiling", func(t *testing.T) {
		t.Parallel()
		queried := 0
		u := upload.New(nil, upload.WithHostLimit(func() string {
			queried++
			return "8M"
		}))

		err := u.SetMaxFileSize("16M")
		assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
		assert.ErrorIs(t, err, upload.ErrLimitExceedsHost)

		var warned bool
		for _, e := range u.Log() {
			if e.Level == slog.LevelWarn {
				warned = true
			}
		}
		assert.True(t, warned)

		require.NoError(t, u.SetMaxFileSize("8M"))
		require.NoError(t, u.SetMaxFileSize("512K"))
		assert.Equal(t, 1, queried)
	})

	t.Run("rejected limit keeps previous", func(t *testing.T) {
		t.Parallel()
		files := incoming(t, "a.bin", "application/octet-stream", "x")
		f := files["file"]
		f.Size = 3 * 1024
		files["file"] = f

		u, _ := newUploader(t, files,
			upload.WithTransfer(&spyTransfer{}),
			upload.WithHostLimit(func() string { return "1M" }),
		)
		require.NoError(t, u.SetMaxFileSize("2K"))
		require.Error(t, u.SetMaxFileSize("2M"))

		_, err := u.Save(context.Background())
		assert.ErrorIs(t, err, upload.ErrFileTooLarge)
	})

	t.Run("overflowing limit is rejected", func(t *testing.T) {
		t.Parallel()
		files := incoming(t, "a.bin", "application/octet-stream", "x")
		f := files["file"]
		f.Size = 5 * 1024 * 1024 * 1024
		files["file"] = f

		spy := &spyTransfer{}
		u, _ := newUploader(t, files,
			upload.WithTransfer(spy),
			upload.WithHostLimit(func() string { return "2M" }),
		)

		require.NoError(t, u.SetMaxFileSize("1M"))

		err := u.SetMaxFileSize("99999999999G")
		assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
		assert.ErrorIs(t, err, filesize.ErrSizeOverflow)

		_, err = u.Save(context.Background())
		assert.ErrorIs(t, err, upload.ErrFileTooLarge)
		assert.Empty(t, spy.Calls())
	})

	t.Run("zero ceiling means unlimited", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil, upload.WithHostLimit(func() string { return "0" }))
		require.NoError(t, u.SetMaxFileSize("100G"))
	})
}

func TestAllowMIMEType(t *testing.T) {
	t.Parallel()

	t.Run("types and presets", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		require.NoError(t, u.AllowMIMEType("Image/PNG"))
		require.NoError(t, u.AllowMIMEType("text"))
		require.NoError(t, u.AllowMIMEType("image/png"))

		allowed := u.Info().AllowedMIMETypes
		assert.Equal(t, "image/png", allowed[0])
		assert.Contains(t, allowed, "text/plain")
		assert.Equal(t, 1, countOf(allowed, "image/png"))
	})

	t.Run("unknown preset", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		err := u.AllowMIMEType("audio")
		assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
		assert.ErrorIs(t, err, mimepolicy.ErrUnknownPreset)
		assert.Empty(t, u.Info().AllowedMIMETypes)
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		require.NoError(t, u.AllowMIMETypes([]string{"image/png", "application/pdf"}))
		assert.Equal(t, []string{"image/png", "application/pdf"}, u.Info().AllowedMIMETypes)

		assert.ErrorIs(t, u.AllowMIMETypes(nil), mimepolicy.ErrEmptyList)

		err := u.AllowMIMETypes([]string{"image/gif", "bogus"})
		assert.ErrorIs(t, err, mimepolicy.ErrUnknownPreset)
		assert.Contains(t, u.Info().AllowedMIMETypes, "image/gif")
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		require.NoError(t, u.AllowMIMEType("video"))
		u.ClearAllowedMIMETypes()
		assert.Empty(t, u.Info().AllowedMIMETypes)
	})

	t.Run("custom presets", func(t *testing.T) {
		t.Parallel()
		policy := mimepolicy.New(mimepolicy.WithPresets(map[string][]string{
			"audio": {"audio/mpeg", "audio/ogg"},
		}))
		u := upload.New(nil, upload.WithPolicy(policy))
		require.NoError(t, u.AllowMIMEType("audio"))
		assert.Equal(t, []string{"audio/mpeg", "audio/ogg"}, u.Info().AllowedMIMETypes)
	})
}

func countOf(list []string, v string) int {
	n := 0
	for _, s := range list {
		if s == v {
			n++
		}
	}
	return n
}

func TestSetDestination(t *testing.T) {
	t.Parallel()

	t.Run("existing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		u := upload.New(nil)
		require.NoError(t, u.SetDestination(dir, false))

		resolved, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		assert.Equal(t, resolved+string(filepath.Separator), u.Destination())
	})

	t.Run("missing without create", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		before := u.Destination()

		err := u.SetDestination(filepath.Join(t.TempDir(), "missing"), false)
		assert.ErrorIs(t, err, upload.ErrConfigurationRejected)
		assert.ErrorIs(t, err, destination.ErrDirectoryNotFound)
		assert.Equal(t, before, u.Destination())
	})

	t.Run("missing with create", func(t *testing.T) {
		t.Parallel()
		target := filepath.Join(t.TempDir(), "a", "b")
		u := upload.New(nil)
		require.NoError(t, u.SetDestination(target, true))
		assert.DirExists(t, target)
	})

	t.Run("reserved characters", func(t *testing.T) {
		t.Parallel()
		u := upload.New(nil)
		err := u.SetDestination(filepath.Join(t.TempDir(), "bad?dir"), true)
		assert.ErrorIs(t, err, destination.ErrInvalidPath)
	})
}

func TestSetTransfer(t *testing.T) {
	t.Parallel()

	u := upload.New(nil)
	assert.ErrorIs(t, u.SetTransfer(nil), upload.ErrNilTransfer)

	require.NoError(t, u.SetTransfer(transfer.Copy()))
	last := u.Log()[len(u.Log())-1]
	value, ok := last.Attr("transfer")
	require.True(t, ok)
	assert.Equal(t, "copy", value.String())
}

func TestInfoReturnsCopy(t *testing.T) {
	t.Parallel()

	u := upload.New(nil)
	require.NoError(t, u.AllowMIMEType("image/png"))

	info := u.Info()
	info.AllowedMIMETypes[0] = "text/html"
	info.Log = nil
	info.Filename = "changed"

	fresh := u.Info()
	assert.Equal(t, []string{"image/png"}, fresh.AllowedMIMETypes)
	assert.NotEmpty(t, fresh.Log)
	assert.Empty(t, fresh.Filename)
}

func TestAuditLogIsForwarded(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatJSON))
	u := upload.New(nil, upload.WithLogger(l))
	require.NoError(t, u.SetInput("file"))

	assert.Contains(t, buf.String(), `"msg":"capture set"`)
	assert.Contains(t, buf.String(), `"component":"upload"`)
	assert.Contains(t, buf.String(), `"input":"file"`)
}
