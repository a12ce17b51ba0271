package pass

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/services"
)

var fixedAssets = []string{
	"icon.png", "icon@2x.png", "icon@3x.png",
	"logo.png", "logo@2x.png", "logo@3x.png",
}

var stripVariants = []struct {
	name          string
	width, height int
}{
	{"strip.png", 375, 98},
	{"strip@2x.png", 750, 196},
	{"strip@3x.png", 1125, 294},
}

// stripBrightness darkens the 1x tier so white field text stays readable.
const stripBrightness = -30

// stripExtPattern bounds the request-supplied image type to a bare extension,
// keeping it out of path construction as anything but a suffix.
var stripExtPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// collectAssets gathers the fixed icon and logo set and, when a strip image
// was supplied, the three derived strip variants.
func (a *Assembler) collectAssets(req *models.GeneratePassRequest, n *Normalized) (map[string][]byte, error) {
	bundle := make(map[string][]byte, len(fixedAssets)+len(stripVariants))
	for _, name := range fixedAssets {
		data, err := os.ReadFile(filepath.Join(a.cfg.AssetsDir, name))
		if err != nil {
			return nil, fmt.Errorf("read asset %s: %w", name, err)
		}
		bundle[name] = data
	}

	if req.StripImage == "" {
		return bundle, nil
	}
	if err := a.collectStrip(req, n, bundle); err != nil {
		return nil, fmt.Errorf("image processing failed: %w", err)
	}
	return bundle, nil
}

// collectStrip decodes the supplied strip image to a temp file, derives the
// three resolution variants through the image processor and reads them back.
// Every temp file is removed whether the pipeline succeeds or fails.
func (a *Assembler) collectStrip(req *models.GeneratePassRequest, n *Normalized, bundle map[string][]byte) error {
	raw := req.StripImage
	if i := strings.Index(raw, "base64,"); i >= 0 {
		raw = raw[i+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("decode strip image: %w", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(req.StripImageType)), "image/")
	if ext == "" {
		ext = "png"
	}
	if !stripExtPattern.MatchString(ext) {
		return fmt.Errorf("invalid strip image type %q", req.StripImageType)
	}

	var tempFiles []string
	defer func() {
		for _, p := range tempFiles {
			os.Remove(p)
		}
	}()

	srcPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-strip-src.%s", n.Serial, ext))
	tempFiles = append(tempFiles, srcPath)
	if err := os.WriteFile(srcPath, data, 0o600); err != nil {
		return fmt.Errorf("write strip source: %w", err)
	}

	for i, variant := range stripVariants {
		dstPath := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s", n.Serial, variant.name))
		tempFiles = append(tempFiles, dstPath)

		opts := services.ProcessOptions{}
		if i == 0 {
			opts.Brightness = stripBrightness
		} else {
			opts.Overlay = &services.OverlaySpec{R: n.ColorR, G: n.ColorG, B: n.ColorB, Alpha: 0.5}
		}

		if err := a.images.Process(srcPath, dstPath, variant.width, variant.height, opts); err != nil {
			return fmt.Errorf("derive %s: %w", variant.name, err)
		}
		out, err := os.ReadFile(dstPath)
		if err != nil {
			return fmt.Errorf("read derived %s: %w", variant.name, err)
		}
		bundle[variant.name] = out
	}
	return nil
}
