package mainwindow

import (
	"fmt"
	"math"

	"rgbyp-maskeditor/internal/automask"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/internal/tool"
	"rgbyp-maskeditor/pkg/colorutil"
	"rgbyp-maskeditor/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var toolNames = []string{
	session.ToolBrush.String(),
	session.ToolErase.String(),
	session.ToolPan.String(),
}

// snapshot is the session state shown by the toolbar.
type snapshot struct {
	tool      session.Tool
	color     int
	brushSize int
	opacity   float64
	autoMask  int
	status    string
}

func takeSnapshot(sess *session.Session) snapshot {
	return snapshot{
		tool:      sess.Tool,
		color:     sess.ColorIndex,
		brushSize: sess.BrushSize,
		opacity:   sess.MaskOpacity(),
		autoMask:  sess.AutoMask,
		status:    canvas.StatusText(sess),
	}
}

// controls is the editor toolbar.
type controls struct {
	mw *MainWindow

	tools    *widget.RadioGroup
	colors   *widget.RadioGroup
	brush    *widget.Slider
	brushVal *widget.Label
	opacity  *widget.Slider
	opVal    *widget.Label
	preset   *widget.Label
}

func newControls(mw *MainWindow) *controls {
	c := &controls{mw: mw}

	c.tools = widget.NewRadioGroup(toolNames, func(name string) {
		for i, n := range toolNames {
			if n == name {
				t := session.Tool(i)
				mw.do(func(m *tool.Machine) { m.SetTool(t) })
			}
		}
	})
	c.tools.Horizontal = true
	c.tools.Required = true

	colorNames := make([]string, colorutil.PaletteSize)
	for i := range colorNames {
		colorNames[i] = colorutil.PaletteName(i)
	}
	c.colors = widget.NewRadioGroup(colorNames, func(name string) {
		for i, n := range colorNames {
			if n == name {
				idx := i
				mw.do(func(m *tool.Machine) { m.SetColor(idx) })
			}
		}
	})
	c.colors.Horizontal = true
	c.colors.Required = true

	c.brushVal = widget.NewLabel("")
	c.brush = widget.NewSlider(session.MinBrushSize, session.MaxBrushSize)
	c.brush.Step = 1
	c.brush.OnChanged = func(v float64) {
		size := int(v)
		c.brushVal.SetText(fmt.Sprintf("%d px", size))
		mw.do(func(m *tool.Machine) {
			if m.Session().BrushSize != size {
				m.SetBrushSize(size)
			}
		})
	}

	c.opVal = widget.NewLabel("")
	c.opacity = widget.NewSlider(0, 1)
	c.opacity.Step = tool.OpacityStep
	c.opacity.OnChanged = func(v float64) {
		c.opVal.SetText(fmt.Sprintf("%d%%", int(math.Round(v*100))))
		mw.do(func(m *tool.Machine) {
			if math.Abs(m.Session().MaskOpacity()-v) > 1e-9 {
				m.SetOpacity(v)
			}
		})
	}

	c.preset = widget.NewLabel("")

	c.apply(snapshot{
		tool:      session.ToolBrush,
		brushSize: mw.cfg.BrushSize,
		opacity:   mw.cfg.MaskOpacity,
		autoMask:  automask.None,
	})
	return c
}

func (c *controls) toolbar() fyne.CanvasObject {
	presets := container.NewHBox(widget.NewLabel("Auto-mask:"))
	for i := 0; i < automask.Count; i++ {
		idx := i
		presets.Add(widget.NewButton(automask.Name(idx), func() {
			c.mw.do(func(m *tool.Machine) { m.ApplyAutoMask(idx) })
		}))
	}
	presets.Add(c.preset)

	brushBox := container.NewBorder(nil, nil, widget.NewLabel("Brush"), c.brushVal, c.brush)
	opacityBox := container.NewBorder(nil, nil, widget.NewLabel("Opacity"), c.opVal, c.opacity)

	actions := container.NewHBox(
		widget.NewButton("Clear", func() { c.mw.do(func(m *tool.Machine) { m.ClearMask() }) }),
		widget.NewButton("Fit", func() { c.mw.do(func(m *tool.Machine) { m.ResetView() }) }),
		widget.NewButton("Save", c.mw.onSave),
		widget.NewButton("Close", c.mw.onCloseEditor),
	)

	return container.NewVBox(
		container.NewHBox(c.tools, widget.NewSeparator(), c.colors, widget.NewSeparator(), actions),
		container.NewGridWithColumns(2, brushBox, opacityBox),
		presets,
	)
}

// apply shows s in the widgets. Widgets ignore values they already hold,
// so the change callbacks do not fire back into the session.
func (c *controls) apply(s snapshot) {
	if int(s.tool) < len(toolNames) {
		c.tools.SetSelected(toolNames[s.tool])
	}
	c.colors.SetSelected(colorutil.PaletteName(s.color))
	c.brush.SetValue(float64(s.brushSize))
	c.brushVal.SetText(fmt.Sprintf("%d px", s.brushSize))
	c.opacity.SetValue(s.opacity)
	c.opVal.SetText(fmt.Sprintf("%d%%", int(math.Round(s.opacity*100))))
	preset := automask.Name(s.autoMask)
	if preset == "" {
		preset = "none"
	}
	c.preset.SetText("Preset: " + preset)
}
