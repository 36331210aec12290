package renderer

import "github.com/tattoy-go/tattoy/pkg/config"

// tattoyConfig is the narrow slice of config.Snapshot the compositing pass
// actually reads, copied out once per composite() so the renderer never
// holds a config read lock across a frame render (spec §5 "Tattoys never
// hold a read lock across a frame render" applies equally to the renderer
// itself).
type tattoyConfig struct {
	showIndicator bool

	saturation float64
	brightness float64
	hue        float64

	textContrastEnabled      bool
	textContrastTarget       float64
	textContrastReadableOnly bool

	shaderRender              bool
	renderShaderColoursToText bool

	animatedCursorLayer   *int
	animatedCursorOpacity float32
}

func newTattoyConfig(snapshot config.Snapshot) tattoyConfig {
	return tattoyConfig{
		showIndicator: snapshot.ShowTattoyIndicator,

		saturation: snapshot.Color.Saturation,
		brightness: snapshot.Color.Brightness,
		hue:        snapshot.Color.Hue,

		textContrastEnabled:      snapshot.TextContrast.Enabled,
		textContrastTarget:       snapshot.TextContrast.TargetContrast,
		textContrastReadableOnly: snapshot.TextContrast.ApplyToReadableOnly,

		shaderRender:              snapshot.Shader.Render,
		renderShaderColoursToText: snapshot.Shader.RenderShaderColoursToText,

		animatedCursorLayer:   snapshot.AnimatedCursor.Layer,
		animatedCursorOpacity: snapshot.AnimatedCursor.Opacity,
	}
}
