package export

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/technologiescollege/SweetEnergy3d-sub000/errors"
)

// LogSuffix names the diagnostic log kept next to a destination.
const LogSuffix = ".log"

// sidecar is the append-mode diagnostic log of one job.
type sidecar struct {
	file *os.File
	log  *zap.Logger
}

// openSidecar opens path for appending and returns a logger writing one
// console line per entry to it and to base.
func openSidecar(path string, base *zap.Logger) (*sidecar, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.IO(errors.PhaseExport, path, err)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(f), zap.DebugLevel)
	return &sidecar{
		file: f,
		log:  zap.New(zapcore.NewTee(core, base.Core())),
	}, nil
}

func (s *sidecar) Close() error {
	_ = s.log.Sync()
	return s.file.Close()
}
