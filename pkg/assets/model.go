// Package assets loads model assets asynchronously.
//
// A model file is YAML describing the root renderable node and the
// animation clips bundled with it:
//
//	name: llama
//	size: [0.3, 0.6, 0.5]
//	color: [200, 170, 120]
//	clips:
//	  - {name: idle, duration: 2.0, loop: true}
//	  - {name: walk, duration: 0.8, loop: true}
package assets

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/decker502/blockworld/pkg/anim"
	"github.com/decker502/blockworld/pkg/scene"
)

// ErrInvalidModel is wrapped by every model validation failure.
var ErrInvalidModel = errors.New("invalid model")

// ModelDef 模型定义（YAML 配置）
// 解析校验后在实例间共享，不再修改
type ModelDef struct {
	Name  string      `yaml:"name"`
	Size  [3]float64  `yaml:"size"`
	Color [3]uint8    `yaml:"color"`
	Clips []anim.Clip `yaml:"clips"`
}

// Asset 一次加载得到的模型实例：新的根节点和动画片段
type Asset struct {
	Root  *scene.Node
	Clips []anim.Clip
}

// ParseModel decodes and validates a model file.
func ParseModel(data []byte) (*ModelDef, error) {
	var def ModelDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition for values the renderer cannot use.
func (d *ModelDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidModel)
	}
	for i, s := range d.Size {
		if s <= 0 {
			return fmt.Errorf("%w: size[%d] must be positive, got %.2f", ErrInvalidModel, i, s)
		}
	}
	for i, c := range d.Clips {
		if c.Name == "" {
			return fmt.Errorf("%w: clip %d has no name", ErrInvalidModel, i)
		}
		if c.Duration < 0 {
			return fmt.Errorf("%w: clip %q has negative duration %.2f", ErrInvalidModel, c.Name, c.Duration)
		}
	}
	return nil
}

// Instantiate creates a new asset instance from the definition.
func (d *ModelDef) Instantiate() *Asset {
	root := scene.NewNode(d.Name)
	root.Size = mgl64.Vec3{d.Size[0], d.Size[1], d.Size[2]}
	root.Color = color.RGBA{R: d.Color[0], G: d.Color[1], B: d.Color[2], A: 0xff}

	clips := make([]anim.Clip, len(d.Clips))
	copy(clips, d.Clips)
	return &Asset{Root: root, Clips: clips}
}
