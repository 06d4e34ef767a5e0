package classifier

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/drive"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/log"
	"github.com/Brianleach11/Brain-Tumor-Classification/pkg/s3"
)

const (
	defaultCNNFileID      = "1x9t4iiOryE2jNJ8OCcWgkbNe17YXlPnU"
	defaultXceptionFileID = "10tcxflFgOtgrTXDR_fMj_3Dr4oM_rbsm"

	cnnFileName      = "cnn_model.weights.bin"
	xceptionFileName = "xception_model.weights.bin"
)

// Provisioner makes sure both weight files exist in the local cache,
// fetching missing ones from S3 when a bucket is configured, otherwise from
// the Google Drive host. Existing files are reused as-is: there is no
// checksum, so a corrupt file is only caught when the model fails to load.
type Provisioner struct {
	logger         *logrus.Logger
	cacheDir       string
	driveClient    drive.ItfDrive
	s3Client       s3.ItfS3
	cnnFileID      string
	xceptionFileID string
}

func NewProvisioner(logger *logrus.Logger, driveClient drive.ItfDrive, s3Client s3.ItfS3) *Provisioner {
	cacheDir := os.Getenv("MODEL_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = "models"
	}

	cnnFileID := os.Getenv("CNN_MODEL_FILE_ID")
	if cnnFileID == "" {
		cnnFileID = defaultCNNFileID
	}

	xceptionFileID := os.Getenv("XCEPTION_MODEL_FILE_ID")
	if xceptionFileID == "" {
		xceptionFileID = defaultXceptionFileID
	}

	return &Provisioner{
		logger:         logger,
		cacheDir:       cacheDir,
		driveClient:    driveClient,
		s3Client:       s3Client,
		cnnFileID:      cnnFileID,
		xceptionFileID: xceptionFileID,
	}
}

// EnsureModels returns the local paths of both weight files, downloading
// whichever is missing.
func (p *Provisioner) EnsureModels(ctx context.Context) (string, string, error) {
	if err := os.MkdirAll(p.cacheDir, 0o755); err != nil {
		return "", "", err
	}

	cnnPath := filepath.Join(p.cacheDir, cnnFileName)
	if err := p.ensure(ctx, cnnPath, p.cnnFileID); err != nil {
		return "", "", err
	}

	xceptionPath := filepath.Join(p.cacheDir, xceptionFileName)
	if err := p.ensure(ctx, xceptionPath, p.xceptionFileID); err != nil {
		return "", "", err
	}

	return cnnPath, xceptionPath, nil
}

func (p *Provisioner) ensure(ctx context.Context, path string, fileID string) error {
	if _, err := os.Stat(path); err == nil {
		p.logger.WithFields(log.Fields{
			"path": path,
		}).Debug("Reusing cached model weights")
		return nil
	}

	p.logger.WithFields(log.Fields{
		"path":    path,
		"file_id": fileID,
	}).Info("Downloading model weights")

	if p.s3Client != nil {
		return p.s3Client.DownloadFile(filepath.Base(path), path)
	}
	return p.driveClient.DownloadFile(ctx, fileID, path)
}
