package pass

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appointpass/backend-pass/models"
)

// emit hands the document and assets to the archive-and-sign engine and
// persists the bundle under the public serving directory. The bundle is
// written to a temp name and renamed so a concurrent read of the same serial
// sees either nothing or a complete file.
func (a *Assembler) emit(n *Normalized, doc *models.PassDocument, assets map[string][]byte) (string, error) {
	passJSON, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode pass document: %w", err)
	}

	data, err := a.signer.Sign(passJSON, assets)
	if err != nil {
		return "", fmt.Errorf("sign bundle: %w", err)
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	final := filepath.Join(a.cfg.OutputDir, n.Serial+".pkpass")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write bundle: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("publish bundle: %w", err)
	}

	return a.downloadURL(n.Serial), nil
}

func (a *Assembler) downloadURL(serial string) string {
	return fmt.Sprintf("%s/passes/%s.pkpass", strings.TrimRight(a.cfg.BaseURL, "/"), serial)
}
