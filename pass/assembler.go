package pass

import (
	"time"

	"go.uber.org/zap"

	"github.com/appointpass/backend-pass/config"
	"github.com/appointpass/backend-pass/models"
	"github.com/appointpass/backend-pass/services"
)

// Assembler runs the full pipeline for one request: normalize, project onto
// the template, collect assets, sign and persist the bundle. It holds no
// per-request state, so one instance serves all requests.
type Assembler struct {
	cfg    *config.Config
	log    *zap.Logger
	tpl    *models.PassDocument
	images services.ImageProcessor
	signer services.BundleSigner
}

func NewAssembler(cfg *config.Config, log *zap.Logger, images services.ImageProcessor, signer services.BundleSigner) (*Assembler, error) {
	tpl, err := LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		cfg:    cfg,
		log:    log,
		tpl:    tpl,
		images: images,
		signer: signer,
	}, nil
}

// Result describes one generated bundle.
type Result struct {
	Serial      string
	AuthToken   string
	PassURL     string
	ReminderAt  time.Time
	HasReminder bool
}

func (a *Assembler) Generate(req *models.GeneratePassRequest) (*Result, error) {
	n := Normalize(req)

	doc, err := a.project(n, req)
	if err != nil {
		return nil, err
	}

	assets, err := a.collectAssets(req, n)
	if err != nil {
		return nil, err
	}

	passURL, err := a.emit(n, doc, assets)
	if err != nil {
		return nil, err
	}

	a.log.Info("pass generated",
		zap.String("serial", n.Serial),
		zap.String("url", passURL),
		zap.Int("assets", len(assets)))

	return &Result{
		Serial:      n.Serial,
		AuthToken:   n.AuthToken,
		PassURL:     passURL,
		ReminderAt:  n.ReminderAt,
		HasReminder: n.HasStart,
	}, nil
}
