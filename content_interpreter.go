package pdf

import (
	"github.com/arclight-labs/pdfprogressive/internal/logger"
)

// Device is the collaborator a ContentInterpreter paints through. A
// concrete renderer (raster, vector, or a text-only sink) implements this
// to receive the decoded sequence of path, paint, clip, text, and image
// operations a content stream describes - the interpreter itself holds no
// opinion about how marks end up on a page.
type Device interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	Rect(x, y, w, h float64)
	ClosePath()

	DrawPath(stroke, fill, evenOdd bool)
	ClipPath(evenOdd bool)

	SaveState()
	RestoreState()
	ConcatMatrix(m matrix)

	SetStrokeColor(cs string, components []float64)
	SetFillColor(cs string, components []float64)
	SetLineWidth(w float64)

	DrawText(gs *GraphicsState, text string)
	DrawImage(img *Image)

	LoadFontData(name string, fontDict Value, programBytes []byte) error
}

// GraphicsState is the full painting state a ContentInterpreter threads
// through a content stream - the CTM/color/line portion PDF's q/Q save,
// plus the text-positioning fields needed for Td/TD/Tm/T*/Tj/TJ. Distinct
// from the lighter-weight gstate used by the plain-text extraction path in
// page.go, which never needs path or clip state.
type GraphicsState struct {
	CTM matrix

	StrokeColorSpace string
	StrokeColor      []float64
	FillColorSpace   string
	FillColor        []float64
	LineWidth        float64

	Tc    float64 // character spacing
	Tw    float64 // word spacing
	Tz    float64 // horizontal scaling, percent
	Tl    float64 // leading
	Tfs   float64 // font size
	Tmode int     // text rendering mode
	Trise float64 // text rise
	Font  *Font

	Tm  matrix // text matrix
	Tlm matrix // text line matrix

	clipPendingEvenOdd *bool
}

func newGraphicsState() *GraphicsState {
	return &GraphicsState{CTM: identity(), Tz: 100}
}

func (g *GraphicsState) clone() *GraphicsState {
	c := *g
	c.StrokeColor = append([]float64(nil), g.StrokeColor...)
	c.FillColor = append([]float64(nil), g.FillColor...)
	return &c
}

func identity() matrix {
	return matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// ContentInterpreter walks a page or form XObject's content stream via
// Interpret, maintaining the q/Q graphics-state stack and dispatching each
// operator to a Device. It never raises MissingData itself - by the time a
// content stream reaches the interpreter its bytes have already been
// resolved (and decompressed) by the caller, normally via withRetry over
// the owning Reader.
type ContentInterpreter struct {
	dev       Device
	resources Value
	gs        *GraphicsState
	gstack    []*GraphicsState
	inCompat  int // BX/EX nesting depth: unknown operators tolerated inside
	limits    *ParseLimits
	err       error
}

// NewContentInterpreter builds an interpreter over resources (the page or
// form XObject's /Resources dict) painting to dev.
func NewContentInterpreter(dev Device, resources Value, limits *ParseLimits) *ContentInterpreter {
	return &ContentInterpreter{dev: dev, resources: resources, gs: newGraphicsState(), limits: limits}
}

// Run tokenizes strm (a content stream or, for /Contents, an array of
// them) and dispatches every operator to the interpreter's Device.
func (ci *ContentInterpreter) Run(strm Value) error {
	Interpret(strm, func(stk *Stack, op string) {
		if ci.err != nil {
			return
		}
		n := stk.Len()
		args := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		ci.err = ci.dispatch(op, args)
	})
	return ci.err
}

func (ci *ContentInterpreter) dispatch(op string, o []Value) error {
	num := func(i int) float64 {
		if i < 0 || i >= len(o) {
			return 0
		}
		return o[i].Float64()
	}
	switch op {
	case "BX":
		ci.inCompat++
		return nil
	case "EX":
		if ci.inCompat > 0 {
			ci.inCompat--
		}
		return nil

	// Graphics state
	case "q":
		ci.gstack = append(ci.gstack, ci.gs.clone())
		ci.dev.SaveState()
	case "Q":
		if n := len(ci.gstack); n > 0 {
			ci.gs = ci.gstack[n-1]
			ci.gstack = ci.gstack[:n-1]
			ci.dev.RestoreState()
		}
	case "cm":
		if len(o) < 6 {
			return ci.badOperator(op, "cm needs 6 operands")
		}
		m := matrix{
			{num(0), num(1), 0},
			{num(2), num(3), 0},
			{num(4), num(5), 1},
		}
		ci.gs.CTM = m.mul(ci.gs.CTM)
		ci.dev.ConcatMatrix(m)
	case "w":
		ci.gs.LineWidth = num(0)
		ci.dev.SetLineWidth(ci.gs.LineWidth)
	case "J", "j", "M", "d", "ri", "i", "gs":
		// line cap/join/miter/dash/render-intent/flatness/ExtGState: state a
		// richer Device can track by inspecting resources itself; the
		// interpreter has no opinion about them.

	// Path construction
	case "m":
		ci.dev.MoveTo(num(0), num(1))
	case "l":
		ci.dev.LineTo(num(0), num(1))
	case "c":
		ci.dev.CurveTo(num(0), num(1), num(2), num(3), num(4), num(5))
	case "v":
		// first control point coincides with the current point, which the
		// Device tracks.
		ci.dev.CurveTo(num(0), num(1), num(0), num(1), num(2), num(3))
	case "y":
		ci.dev.CurveTo(num(0), num(1), num(2), num(3), num(2), num(3))
	case "h":
		ci.dev.ClosePath()
	case "re":
		ci.dev.Rect(num(0), num(1), num(2), num(3))

	// Painting
	case "S":
		ci.dev.DrawPath(true, false, false)
	case "s":
		ci.dev.ClosePath()
		ci.dev.DrawPath(true, false, false)
	case "f", "F":
		ci.dev.DrawPath(false, true, false)
	case "f*":
		ci.dev.DrawPath(false, true, true)
	case "B":
		ci.dev.DrawPath(true, true, false)
	case "B*":
		ci.dev.DrawPath(true, true, true)
	case "b":
		ci.dev.ClosePath()
		ci.dev.DrawPath(true, true, false)
	case "b*":
		ci.dev.ClosePath()
		ci.dev.DrawPath(true, true, true)
	case "n":
		ci.dev.DrawPath(false, false, false)

	// Clipping
	case "W":
		ci.setClipPending(false)
	case "W*":
		ci.setClipPending(true)

	// Color
	case "CS":
		ci.gs.StrokeColorSpace = o0Name(o)
	case "cs":
		ci.gs.FillColorSpace = o0Name(o)
	case "SC", "SCN":
		ci.gs.StrokeColor = floatsOf(o)
		ci.dev.SetStrokeColor(ci.gs.StrokeColorSpace, ci.gs.StrokeColor)
	case "sc", "scn":
		ci.gs.FillColor = floatsOf(o)
		ci.dev.SetFillColor(ci.gs.FillColorSpace, ci.gs.FillColor)
	case "G":
		ci.gs.StrokeColorSpace, ci.gs.StrokeColor = "DeviceGray", floatsOf(o)
		ci.dev.SetStrokeColor("DeviceGray", ci.gs.StrokeColor)
	case "g":
		ci.gs.FillColorSpace, ci.gs.FillColor = "DeviceGray", floatsOf(o)
		ci.dev.SetFillColor("DeviceGray", ci.gs.FillColor)
	case "RG":
		ci.gs.StrokeColorSpace, ci.gs.StrokeColor = "DeviceRGB", floatsOf(o)
		ci.dev.SetStrokeColor("DeviceRGB", ci.gs.StrokeColor)
	case "rg":
		ci.gs.FillColorSpace, ci.gs.FillColor = "DeviceRGB", floatsOf(o)
		ci.dev.SetFillColor("DeviceRGB", ci.gs.FillColor)
	case "K":
		ci.gs.StrokeColorSpace, ci.gs.StrokeColor = "DeviceCMYK", floatsOf(o)
		ci.dev.SetStrokeColor("DeviceCMYK", ci.gs.StrokeColor)
	case "k":
		ci.gs.FillColorSpace, ci.gs.FillColor = "DeviceCMYK", floatsOf(o)
		ci.dev.SetFillColor("DeviceCMYK", ci.gs.FillColor)

	// Shading
	case "sh":
		// paints the current clip with a shading pattern; left to Device
		// since it needs the resolved /Shading resource, which the
		// interpreter doesn't carry a decode path for.

	// Text object/state
	case "BT":
		ci.gs.Tm = identity()
		ci.gs.Tlm = identity()
	case "ET":
	case "Tc":
		ci.gs.Tc = num(0)
	case "Tw":
		ci.gs.Tw = num(0)
	case "Tz":
		ci.gs.Tz = num(0)
	case "TL":
		ci.gs.Tl = num(0)
	case "Tf":
		if font := ci.lookupFont(o); font != nil {
			ci.gs.Font = font
		}
		ci.gs.Tfs = num(1)
	case "Tr":
		ci.gs.Tmode = int(num(0))
	case "Ts":
		ci.gs.Trise = num(0)

	// Text positioning
	case "Td":
		ci.textMove(num(0), num(1))
	case "TD":
		ci.gs.Tl = -num(1)
		ci.textMove(num(0), num(1))
	case "Tm":
		m := matrix{
			{num(0), num(1), 0},
			{num(2), num(3), 0},
			{num(4), num(5), 1},
		}
		ci.gs.Tm = m
		ci.gs.Tlm = m
	case "T*":
		// NextLine moves the text line matrix down by leading - a
		// translation of [0, -Tl], not a no-op.
		ci.nextLine()

	// Text showing
	case "Tj":
		if len(o) >= 1 {
			ci.showText(o[0].RawString())
		}
	case "'":
		ci.nextLine()
		if len(o) >= 1 {
			ci.showText(o[0].RawString())
		}
	case "\"":
		ci.gs.Tw = num(0)
		ci.gs.Tc = num(1)
		ci.nextLine()
		if len(o) >= 3 {
			ci.showText(o[2].RawString())
		}
	case "TJ":
		// Per-operator semantics: TJ emits exactly one text item (the
		// concatenation of its string elements), inserting a single space
		// wherever a numeric adjustment is more negative than -100 (in
		// thousandths of text space) - not one Tj call per array element.
		if len(o) == 0 || o[0].Kind() != Array {
			return nil
		}
		arr := o[0]
		var text string
		for i := 0; i < arr.Len(); i++ {
			e := arr.Index(i)
			switch e.Kind() {
			case String, HexString:
				text += e.RawString()
			case Integer, Real:
				adj := e.Float64()
				if adj < -100 {
					text += " "
				}
				tx := -adj / 1000 * ci.gs.Tfs * (ci.gs.Tz / 100)
				m := matrix{{1, 0, 0}, {0, 1, 0}, {tx, 0, 1}}
				ci.gs.Tm = m.mul(ci.gs.Tm)
			}
		}
		if text != "" {
			ci.showText(text)
		}

	// XObjects
	case "Do":
		if len(o) < 1 || o[0].Kind() != Name {
			return ci.badOperator(op, "Do needs a /Name operand")
		}
		if err := ci.handleDo(o[0].Name()); err != nil {
			return err
		}

	// Marked content
	case "MP", "DP", "BMC", "BDC", "EMC":
		// marked content has no visual effect the interpreter itself needs
		// to track; a Device that cares about structure tags can special
		// case these.

	default:
		if ci.inCompat > 0 {
			logger.Debug("ignoring operator inside BX/EX compatibility section", "op", op)
			return nil
		}
		logger.Debug("unsupported content stream operator", "op", op)
		return ci.badOperator(op, "unknown operator")
	}
	// A pending W/W* clip is consumed by the next painting operator.
	switch op {
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n":
		if p := ci.gs.clipPendingEvenOdd; p != nil {
			ci.dev.ClipPath(*p)
			ci.gs.clipPendingEvenOdd = nil
		}
	}
	return nil
}

func (ci *ContentInterpreter) nextLine() {
	ci.gs.Tlm[2][1] -= ci.gs.Tl
	ci.gs.Tm = ci.gs.Tlm
}

func (ci *ContentInterpreter) textMove(tx, ty float64) {
	m := matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
	ci.gs.Tlm = m.mul(ci.gs.Tlm)
	ci.gs.Tm = ci.gs.Tlm
}

func (ci *ContentInterpreter) showText(s string) {
	ci.dev.DrawText(ci.gs, s)
	// Advancing Tm by the string's rendered width is a font/Device concern
	// (glyph widths live behind the Font collaborator), so the interpreter
	// itself doesn't move Tm after a show operator.
}

func (ci *ContentInterpreter) setClipPending(evenOdd bool) {
	v := evenOdd
	ci.gs.clipPendingEvenOdd = &v
}

func (ci *ContentInterpreter) lookupFont(o []Value) *Font {
	if len(o) < 1 || o[0].Kind() != Name {
		return nil
	}
	fontRes := ci.resources.Key("Font").Key(o[0].Name())
	if fontRes.IsNull() {
		return nil
	}
	f := Font{V: fontRes}
	return &f
}

func (ci *ContentInterpreter) handleDo(name string) error {
	xobj := ci.resources.Key("XObject").Key(name)
	if xobj.IsNull() {
		return nil
	}
	switch xobj.Key("Subtype").Name() {
	case "Image":
		img, err := decodeImageXObject(xobj)
		if err != nil {
			return err
		}
		ci.dev.DrawImage(img)
	case "Form":
		sub := NewContentInterpreter(ci.dev, xobj.Key("Resources"), ci.limits)
		sub.gs = ci.gs.clone()
		if m, ok := matrixFromValue(xobj.Key("Matrix")); ok {
			sub.gs.CTM = m.mul(sub.gs.CTM)
			ci.dev.ConcatMatrix(m)
		}
		ci.dev.SaveState()
		err := sub.Run(xobj)
		ci.dev.RestoreState()
		return err
	}
	return nil
}

func (ci *ContentInterpreter) badOperator(op string, msg string) error {
	if ci.inCompat > 0 {
		return nil
	}
	return &ContentStreamError{Op: op, Msg: msg}
}

func o0Name(o []Value) string {
	if len(o) < 1 || o[0].Kind() != Name {
		return ""
	}
	return o[0].Name()
}

func floatsOf(o []Value) []float64 {
	out := make([]float64, 0, len(o))
	for _, v := range o {
		if v.Kind() == Integer || v.Kind() == Real {
			out = append(out, v.Float64())
		}
	}
	return out
}
