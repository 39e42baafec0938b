// Package render draws a section's weekly timetable as a PNG.
package render

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image/color"
	"sort"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Freeeeeet/timetable/internal/model"
)

type FontStyle string

const (
	FontStyleRegular FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Layout, in pixels.
const (
	imageWidth       = 1400
	imageHeight      = 900
	headerHeight     = 100
	leftLabelsWidth  = 80
	legendWidth      = 160
	dayPaddingX      = 6
	minSlotHeight    = 8.0
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	defaultMinHour   = 7
	defaultMaxHour   = 18
	maxLabelRunes    = 18
)

const (
	titleFontSize      = 25.0
	dayFontSize        = 22.0
	hourLabelFontSize  = 16.0
	slotTimeFontSize   = 14.0
	slotTextFontSize   = 12.0
	legendTitleSize    = 14.0
	legendItemFontSize = 12.0
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}

	slotTextColor   = color.RGBA{20, 24, 28, 230}
	slotShadowColor = color.RGBA{0, 0, 0, 20}

	legendTextColor = color.RGBA{90, 95, 100, 220}
	legendItemColor = color.RGBA{70, 74, 78, 220}

	// Session types are coloured by hashing into this palette.
	typePalette = []color.RGBA{
		{133, 193, 85, 220},
		{120, 170, 230, 230},
		{255, 182, 193, 255},
		{250, 200, 110, 230},
		{190, 160, 230, 230},
		{120, 210, 200, 230},
	}
	unresolvedColor = color.RGBA{200, 200, 200, 220}
)

type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont sets a Go font face of the given size, falling back to basicfont.
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == FontStyleBold {
			data = gobold.TTF
		}
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			parsed = nil
		}
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// WeekGrid draws schedule as a Monday..Sunday grid. Columns, when given, are
// listed in the legend in their stored order.
func WeekGrid(title string, schedule model.SectionSchedule, columns []model.TimeColumn) ([]byte, error) {
	sessions := flatten(schedule)
	hours := calculateHourRange(sessions)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / len(model.Days)
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, title)
	drawHourLabels(dc, hours, cellHeight)
	for i, day := range model.Days {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i)
		drawDayHeader(dc, day, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, s := range sessions {
			if s.rng.Day == day {
				drawSession(dc, s, x, y, dayWidth, hours, cellHeight)
			}
		}
	}
	drawLegend(dc, dayWidth, sessions, columns)

	return encodeImage(dc)
}

type session struct {
	rng    model.TimeRange
	detail model.SessionDetail
}

// flatten turns the schedule into sessions ordered by day and start.
// Labels that do not parse are left out.
func flatten(schedule model.SectionSchedule) []session {
	var out []session
	for day, byLabel := range schedule {
		for label, detail := range byLabel {
			rng, err := model.ParseTimeRange(day, label)
			if err != nil {
				continue
			}
			out = append(out, session{rng: rng, detail: detail})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].rng, out[j].rng
		if a.Day != b.Day {
			return a.Day.Index() < b.Day.Index()
		}
		return a.Start < b.Start
	})
	return out
}

func calculateHourRange(sessions []session) hourRange {
	minHour := 24
	maxHour := 0

	for _, s := range sessions {
		startH := s.rng.Start / 60
		endH := (s.rng.End + 59) / 60
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := max(minHour-hourPaddingTop, 0)
	endHour := min(maxHour+hourPaddingBot, 24)

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour,
	}
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

func drawHeader(dc *gg.Context, title string) {
	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	_, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleRegular)
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		dc.DrawStringAnchored(model.FormatClock((hours.start+hIdx)*60), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int) {
	if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, day model.Day, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(string(day), x+float64(dayWidth)/2, y, 0.5, -0.4)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawSession(dc *gg.Context, s session, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	startHour := float64(s.rng.Start) / 60.0
	endHour := float64(s.rng.End) / 60.0

	slotY := y + (startHour-float64(hours.start))*cellHeight
	slotHeight := max((endHour-startHour)*cellHeight, minSlotHeight)

	fillColor := typeColor(s.detail)
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotBorderRadius)
	dc.Stroke()

	loadFont(dc, slotTimeFontSize, FontStyleBold)
	dc.SetColor(slotTextColor)
	txtX := x + float64(dayPaddingX) + 6
	txtY := slotY + 18
	dc.DrawStringAnchored(s.rng.Label(), txtX, txtY, 0, 0)

	// Subject and room only when there is room for them.
	loadFont(dc, slotTextFontSize, FontStyleRegular)
	lines := []string{s.detail.Subject, s.detail.Room}
	for i, line := range lines {
		lineY := txtY + float64(i+1)*15
		if lineY > slotY+slotHeight-6 {
			break
		}
		dc.DrawStringAnchored(truncate(line, maxLabelRunes), txtX, lineY, 0, 0)
	}
}

func typeColor(d model.SessionDetail) color.RGBA {
	if d.Subject == model.Unresolved {
		return unresolvedColor
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(d.Type))
	return typePalette[h.Sum32()%uint32(len(typePalette))]
}

func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func drawLegend(dc *gg.Context, dayWidth int, sessions []session, columns []model.TimeColumn) {
	legendX := float64(leftLabelsWidth + len(model.Days)*dayWidth + 12)
	legendY := float64(headerHeight)

	types := make(map[string]model.SessionDetail)
	for _, s := range sessions {
		types[s.detail.Type] = s.detail
	}
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	boxW, boxH := 20.0, 14.0
	liY := legendY

	if len(names) > 0 {
		loadFont(dc, legendTitleSize, FontStyleBold)
		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored("Types", legendX, liY, 0, 0)
		liY += 12

		for _, name := range names {
			dc.SetColor(typeColor(types[name]))
			dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
			dc.Fill()

			label := name
			if label == "" {
				label = "-"
			}
			loadFont(dc, legendItemFontSize, FontStyleRegular)
			dc.SetColor(legendItemColor)
			dc.DrawStringAnchored(truncate(label, 14), legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
			liY += boxH + 10
		}
		liY += 16
	}

	if len(columns) > 0 {
		loadFont(dc, legendTitleSize, FontStyleBold)
		dc.SetColor(legendTextColor)
		dc.DrawStringAnchored("Periods", legendX, liY, 0, 0)
		liY += 18

		loadFont(dc, legendItemFontSize, FontStyleRegular)
		dc.SetColor(legendItemColor)
		for i, c := range columns {
			if liY > imageHeight-10 {
				break
			}
			dc.DrawStringAnchored(fmt.Sprintf("%d. %s - %s", i+1, c.Start, c.End), legendX, liY, 0, 0)
			liY += 16
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
