package pass

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/config"
	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/services"
)

type mockProcessor struct {
	calls int
	fail  bool
}

func (m *mockProcessor) Process(srcPath, dstPath string, width, height int, opts services.ProcessOptions) error {
	m.calls++
	if m.fail {
		return errors.New("decoder exploded")
	}
	return os.WriteFile(dstPath, []byte("processed"), 0o600)
}

type mockSigner struct {
	fail bool
}

func (m *mockSigner) Sign(passJSON []byte, assets map[string][]byte) ([]byte, error) {
	if m.fail {
		return nil, errors.New("no signing identity")
	}
	return []byte("BUNDLE"), nil
}

func writeFixedAssets(t *testing.T, dir string) {
	t.Helper()
	for _, name := range fixedAssets {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}
}

func newCollectorAssembler(t *testing.T, images services.ImageProcessor, signer services.BundleSigner) *Assembler {
	t.Helper()

	assetsDir := t.TempDir()
	writeFixedAssets(t, assetsDir)

	tpl, err := LoadTemplate("testdata/pass.json")
	assert.NoError(t, err)

	return &Assembler{
		cfg: &config.Config{
			BaseURL:            "https://passes.example.com",
			PassTypeIdentifier: "pass.com.example.appointment",
			TeamIdentifier:     "TEAM123456",
			OrganizationName:   "Example Clinic",
			AssetsDir:          assetsDir,
			OutputDir:          t.TempDir(),
		},
		log:    zap.NewNop(),
		tpl:    tpl,
		images: images,
		signer: signer,
	}
}

func assertNoLeftoverTempFiles(t *testing.T, tmpDir string) {
	t.Helper()
	entries, err := os.ReadDir(tmpDir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "temp files must be removed on every path")
}

func TestCollectAssets_NoStripImage(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	images := &mockProcessor{}
	a := newCollectorAssembler(t, images, &mockSigner{})

	req := &models.GeneratePassRequest{}
	bundle, err := a.collectAssets(req, Normalize(req))

	assert.NoError(t, err)
	assert.Len(t, bundle, len(fixedAssets))
	assert.Zero(t, images.calls, "image engine must not run without a strip image")
	assertNoLeftoverTempFiles(t, tmpDir)
}

func TestCollectAssets_StripVariants(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	images := &mockProcessor{}
	a := newCollectorAssembler(t, images, &mockSigner{})

	req := &models.GeneratePassRequest{
		StripImage:     base64.StdEncoding.EncodeToString([]byte("raw-image-bytes")),
		StripImageType: "png",
	}
	bundle, err := a.collectAssets(req, Normalize(req))

	assert.NoError(t, err)
	assert.Equal(t, 3, images.calls)
	for _, variant := range stripVariants {
		assert.Equal(t, []byte("processed"), bundle[variant.name])
	}
	assertNoLeftoverTempFiles(t, tmpDir)
}

func TestCollectAssets_DataURIAndMimeType(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	images := &mockProcessor{}
	a := newCollectorAssembler(t, images, &mockSigner{})

	req := &models.GeneratePassRequest{
		StripImage:     "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-bytes")),
		StripImageType: "image/jpeg",
	}
	_, err := a.collectAssets(req, Normalize(req))

	assert.NoError(t, err)
	assert.Equal(t, 3, images.calls)
	assertNoLeftoverTempFiles(t, tmpDir)
}

func TestCollectAssets_ProcessorFailureCleansUp(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	a := newCollectorAssembler(t, &mockProcessor{fail: true}, &mockSigner{})

	req := &models.GeneratePassRequest{
		StripImage: base64.StdEncoding.EncodeToString([]byte("raw-image-bytes")),
	}
	_, err := a.collectAssets(req, Normalize(req))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "image processing failed")
	assertNoLeftoverTempFiles(t, tmpDir)
}

func TestCollectAssets_RejectsTraversalImageType(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	victim := filepath.Join(t.TempDir(), "victim.conf")
	assert.NoError(t, os.WriteFile(victim, []byte("keep me"), 0o600))

	images := &mockProcessor{}
	a := newCollectorAssembler(t, images, &mockSigner{})

	req := &models.GeneratePassRequest{
		StripImage:     base64.StdEncoding.EncodeToString([]byte("raw-image-bytes")),
		StripImageType: "png/" + strings.Repeat("../", 40) + victim,
	}
	_, err := a.collectAssets(req, Normalize(req))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strip image type")
	assert.Zero(t, images.calls)

	data, readErr := os.ReadFile(victim)
	assert.NoError(t, readErr)
	assert.Equal(t, []byte("keep me"), data, "files outside the temp dir must not be touched")
	assertNoLeftoverTempFiles(t, tmpDir)
}

func TestCollectAssets_BadEncoding(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMPDIR", tmpDir)

	images := &mockProcessor{}
	a := newCollectorAssembler(t, images, &mockSigner{})

	req := &models.GeneratePassRequest{StripImage: "%%not-base64%%"}
	_, err := a.collectAssets(req, Normalize(req))

	assert.Error(t, err)
	assert.Zero(t, images.calls)
	assertNoLeftoverTempFiles(t, tmpDir)
}

func TestGenerate_WritesBundleAndReturnsURL(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	a := newCollectorAssembler(t, &mockProcessor{}, &mockSigner{})

	lead := 30
	result, err := a.Generate(&models.GeneratePassRequest{
		AppointmentDate:  "2024-06-01",
		AppointmentTime:  "2024-06-01T14:30",
		AppointmentType:  "Dental Checkup",
		NotificationTime: &lead,
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://passes.example.com/passes/"+result.Serial+".pkpass", result.PassURL)
	assert.True(t, result.HasReminder)

	data, err := os.ReadFile(filepath.Join(a.cfg.OutputDir, result.Serial+".pkpass"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("BUNDLE"), data)

	// no partial write left behind
	entries, err := os.ReadDir(a.cfg.OutputDir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGenerate_SignerFailure(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	a := newCollectorAssembler(t, &mockProcessor{}, &mockSigner{fail: true})

	_, err := a.Generate(&models.GeneratePassRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sign bundle")

	entries, err := os.ReadDir(a.cfg.OutputDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmit_WriteFailureLeavesNoTempFile(t *testing.T) {
	a := newCollectorAssembler(t, &mockProcessor{}, &mockSigner{})

	// occupy the temp path so the bundle write fails
	n := &Normalized{Serial: "pass-blocked"}
	assert.NoError(t, os.MkdirAll(filepath.Join(a.cfg.OutputDir, "pass-blocked.pkpass.tmp"), 0o755))

	_, err := a.emit(n, a.tpl, map[string][]byte{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "write bundle")

	entries, err := os.ReadDir(a.cfg.OutputDir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
