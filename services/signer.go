package services

import (
	"archive/zip"
	"bytes"
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"sort"

	"github.com/smallstep/pkcs7"
	"golang.org/x/crypto/pkcs12"
)

// BundleSigner turns a pass document plus its named binary assets into a
// signed, self-contained bundle byte stream.
type BundleSigner interface {
	Sign(passJSON []byte, assets map[string][]byte) ([]byte, error)
}

// PassSigner builds .pkpass archives: a manifest of SHA-1 digests over every
// bundled file, a detached PKCS#7 signature over that manifest with the pass
// certificate chain, and a zip of the lot.
type PassSigner struct {
	cert *x509.Certificate
	key  crypto.PrivateKey
	wwdr *x509.Certificate
}

// NewPassSigner loads the passphrase-protected .p12 signing identity and the
// WWDR intermediate certificate in PEM form.
func NewPassSigner(p12Path, password, wwdrPath string) (*PassSigner, error) {
	p12Data, err := os.ReadFile(p12Path)
	if err != nil {
		return nil, fmt.Errorf("read signing certificate: %w", err)
	}

	key, cert, err := pkcs12.Decode(p12Data, password)
	if err != nil {
		return nil, fmt.Errorf("decode signing certificate: %w", err)
	}

	wwdrData, err := os.ReadFile(wwdrPath)
	if err != nil {
		return nil, fmt.Errorf("read WWDR certificate: %w", err)
	}

	block, _ := pem.Decode(wwdrData)
	if block == nil {
		return nil, fmt.Errorf("WWDR certificate is not PEM encoded")
	}
	wwdr, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse WWDR certificate: %w", err)
	}

	return &PassSigner{cert: cert, key: key, wwdr: wwdr}, nil
}

func (s *PassSigner) Sign(passJSON []byte, assets map[string][]byte) ([]byte, error) {
	files := map[string][]byte{"pass.json": passJSON}
	for name, data := range assets {
		files[name] = data
	}

	manifest := make(map[string]string, len(files))
	for name, data := range files {
		sum := sha1.Sum(data)
		manifest[name] = hex.EncodeToString(sum[:])
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	signature, err := s.signManifest(manifestJSON)
	if err != nil {
		return nil, err
	}

	files["manifest.json"] = manifestJSON
	files["signature"] = signature

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close bundle archive: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PassSigner) signManifest(manifestJSON []byte) ([]byte, error) {
	sd, err := pkcs7.NewSignedData(manifestJSON)
	if err != nil {
		return nil, fmt.Errorf("prepare signature: %w", err)
	}
	if err := sd.AddSignerChain(s.cert, s.key, []*x509.Certificate{s.wwdr}, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, fmt.Errorf("sign manifest: %w", err)
	}
	sd.Detach()
	signature, err := sd.Finish()
	if err != nil {
		return nil, fmt.Errorf("encode signature: %w", err)
	}
	return signature, nil
}
