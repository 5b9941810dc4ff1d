package composer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/composer/internal/assets"
	"github.com/Faultbox/composer/internal/config"
	"github.com/Faultbox/composer/internal/engine/scene"
	"github.com/Faultbox/composer/pkg/math"
)

// LoadPreset places every configured model. Loads finish asynchronously;
// a failed model or texture is logged and skipped.
func LoadPreset(sc *scene.Scene, preset []config.Placement, log *zap.Logger) {
	for _, p := range preset {
		sc.LoadModel(assets.FromPath(p.Model), func(in *scene.Instance, err error) {
			if err != nil {
				log.Error("preset model failed", zap.String("model", p.Model), zap.Error(err))
				return
			}
			arrange(in, p)
			if p.Texture == "" {
				return
			}
			sc.TextureInstance(in.ID(), assets.FromPath(p.Texture), func(err error) {
				if err != nil {
					log.Error("preset texture failed", zap.String("texture", p.Texture), zap.Error(err))
				}
			})
		})
	}
}

func arrange(in *scene.Instance, p config.Placement) {
	in.Move(scene.Delta{
		Position: math.Vec3(p.Position),
		Rotation: math.Vec3{0, p.Yaw, 0},
	})
	if p.Scale > 0 {
		in.SetScale(math.Vec3{p.Scale, p.Scale, p.Scale})
	}
}
