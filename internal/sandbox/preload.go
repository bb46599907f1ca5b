package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/image"
	"go.uber.org/zap"

	"coderoom/internal/language"
)

// PreloadImages pulls every registered language image so the first
// execution of each language does not pay the pull latency.
func (d *DockerExecutor) PreloadImages(ctx context.Context) error {
	for _, p := range language.All() {
		d.logger.Info("checking image",
			zap.String("language", p.Name),
			zap.String("image", p.Image),
		)
		if err := d.ensureImage(ctx, p.Image); err != nil {
			return err
		}
	}
	d.logger.Info("all language images ready")
	return nil
}

// ensureImage pulls the image if it is not already present locally.
func (d *DockerExecutor) ensureImage(ctx context.Context, imageName string) error {
	if _, _, err := d.cli.ImageInspectWithRaw(ctx, imageName); err == nil {
		return nil
	}

	reader, err := d.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// The pull stream must be drained for the pull to complete.
	dec := json.NewDecoder(reader)
	for {
		var msg map[string]interface{}
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("pull image %s: decode progress: %w", imageName, err)
		}
	}

	return nil
}
