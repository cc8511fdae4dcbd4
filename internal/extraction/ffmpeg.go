package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// Transcoder converts a voice note into a compressed format the model accepts.
type Transcoder interface {
	ToMP3(ctx context.Context, audio []byte) ([]byte, error)
}

type FFmpeg struct {
	path   string
	tmpDir string
}

func NewFFmpeg(path, tmpDir string) *FFmpeg {
	return &FFmpeg{path: path, tmpDir: tmpDir}
}

// ToMP3 writes audio under a per-call name, transcodes it and removes both files.
func (f *FFmpeg) ToMP3(ctx context.Context, audio []byte) ([]byte, error) {
	base := filepath.Join(f.tmpDir, "voice-"+uuid.NewString())
	in, out := base+".oga", base+".mp3"
	defer os.Remove(in)
	defer os.Remove(out)

	if err := os.WriteFile(in, audio, 0o600); err != nil {
		return nil, fmt.Errorf("error writing audio: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.path,
		"-y",
		"-i", in,
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "48k",
		out)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}
	return os.ReadFile(out)
}
