package pdf

import (
	"testing"
)

func TestNewTextSpatialIndex(t *testing.T) {
	if newTextSpatialIndex([]Text{}) == nil {
		t.Error("expected index to be created even for empty input")
	}

	single := []Text{{S: "test", X: 100, Y: 200, W: 50, FontSize: 12}}
	if newTextSpatialIndex(single) == nil {
		t.Error("expected index to be created for a single text")
	}

	multi := []Text{
		{S: "text1", X: 100, Y: 200, W: 30, FontSize: 12},
		{S: "text2", X: 150, Y: 250, W: 40, FontSize: 10},
		{S: "text3", X: 200, Y: 300, W: 50, FontSize: 14},
	}
	if newTextSpatialIndex(multi) == nil {
		t.Error("expected index to be created for multiple texts")
	}
}

func TestTextSpatialIndexQuery(t *testing.T) {
	texts := []Text{
		{S: "top-left", X: 100, Y: 300, W: 50, FontSize: 12},
		{S: "top-right", X: 300, Y: 300, W: 60, FontSize: 12},
		{S: "bottom-left", X: 100, Y: 100, W: 70, FontSize: 12},
		{S: "middle", X: 200, Y: 200, W: 40, FontSize: 12},
	}

	idx := newTextSpatialIndex(texts)

	topLeftBounds := Rect{Min: Point{X: 90, Y: 290}, Max: Point{X: 160, Y: 310}}
	found := false
	for _, text := range idx.Query(topLeftBounds) {
		if text.S == "top-left" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find 'top-left' text in top-left query bounds")
	}

	smallBounds := Rect{Min: Point{X: 50, Y: 50}, Max: Point{X: 60, Y: 60}}
	if results := idx.Query(smallBounds); len(results) != 0 {
		t.Errorf("expected 0 results for a disjoint area, got %d", len(results))
	}
}

func TestIntersectsFunction(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	rect1 := Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 100, Y: 100}}
	rect2 := Rect{Min: Point{X: 50, Y: 50}, Max: Point{X: 150, Y: 150}}
	if !idx.intersects(rect1, rect2) {
		t.Error("expected rectangles to intersect")
	}

	rect3 := Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 50, Y: 50}}
	rect4 := Rect{Min: Point{X: 60, Y: 60}, Max: Point{X: 100, Y: 100}}
	if idx.intersects(rect3, rect4) {
		t.Error("expected rectangles to not intersect")
	}

	rect5 := Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 50, Y: 50}}
	rect6 := Rect{Min: Point{X: 50, Y: 50}, Max: Point{X: 100, Y: 100}}
	if !idx.intersects(rect5, rect6) {
		t.Error("expected touching rectangles to intersect")
	}
}

func TestNewTextSpatialIndexFields(t *testing.T) {
	texts := []Text{
		{S: "text1", X: 100, Y: 200, W: 30, FontSize: 12},
		{S: "text2", X: 150, Y: 250, W: 40, FontSize: 10},
	}

	idx := newTextSpatialIndex(texts)
	if idx.maxEntries != 10 {
		t.Errorf("maxEntries = %d, want 10", idx.maxEntries)
	}
	if len(idx.texts) != 2 {
		t.Errorf("len(texts) = %d, want 2", len(idx.texts))
	}
	if idx.root == nil {
		t.Error("expected root node to be built")
	}
}

func TestTextSpatialIndexInsert(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	first := Text{S: "first", X: 100, Y: 200, W: 30, FontSize: 12}
	idx.Insert(first)

	results := idx.Query(Rect{Min: Point{X: 90, Y: 190}, Max: Point{X: 140, Y: 210}})
	found := false
	for _, text := range results {
		if text.S == "first" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find inserted text")
	}

	second := Text{S: "second", X: 300, Y: 400, W: 40, FontSize: 10}
	idx.Insert(second)

	all := idx.Query(Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 500, Y: 500}})
	var foundFirst, foundSecond bool
	for _, text := range all {
		switch text.S {
		case "first":
			foundFirst = true
		case "second":
			foundSecond = true
		}
	}
	if !foundFirst || !foundSecond {
		t.Error("expected to find both inserted texts")
	}
}

func TestCalculateBounds(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	empty := idx.calculateBounds(nil)
	if empty.Min.X != 0 || empty.Min.Y != 0 || empty.Max.X != 0 || empty.Max.Y != 0 {
		t.Error("expected empty bounds to be all zeros")
	}

	single := []Text{{S: "test", X: 100, Y: 200, W: 30, FontSize: 12}}
	got := idx.calculateBounds(single)
	if got.Min.X != 100 || got.Min.Y != 200 || got.Max.X != 130 || got.Max.Y != 212 {
		t.Errorf("bounds = Min(%f,%f) Max(%f,%f), want Min(100,200) Max(130,212)",
			got.Min.X, got.Min.Y, got.Max.X, got.Max.Y)
	}

	multi := []Text{
		{X: 100, Y: 200, W: 10, FontSize: 5},
		{X: 150, Y: 250, W: 20, FontSize: 10},
	}
	got = idx.calculateBounds(multi)
	if got.Min.X != 100 || got.Min.Y != 200 || got.Max.X != 170 || got.Max.Y != 260 {
		t.Errorf("bounds = Min(%f,%f) Max(%f,%f), want Min(100,200) Max(170,260)",
			got.Min.X, got.Min.Y, got.Max.X, got.Max.Y)
	}
}

func TestRectangleArea(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	if area := idx.rectangleArea(Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 10, Y: 20}}); area != 200 {
		t.Errorf("area = %f, want 200", area)
	}
	if area := idx.rectangleArea(Rect{Min: Point{X: 10, Y: 10}, Max: Point{X: 5, Y: 5}}); area != 0 {
		t.Errorf("area = %f, want 0 for an inverted rectangle", area)
	}
	if area := idx.rectangleArea(Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 0, Y: 0}}); area != 0 {
		t.Errorf("area = %f, want 0 for a zero-size rectangle", area)
	}
}

func TestExpandBounds(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	rect1 := Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 10, Y: 10}}
	rect2 := Rect{Min: Point{X: 5, Y: 5}, Max: Point{X: 15, Y: 15}}
	got := idx.expandBounds(rect1, rect2)

	if got.Min.X != 0 || got.Min.Y != 0 || got.Max.X != 15 || got.Max.Y != 15 {
		t.Errorf("expanded = Min(%f,%f) Max(%f,%f), want Min(0,0) Max(15,15)",
			got.Min.X, got.Min.Y, got.Max.X, got.Max.Y)
	}
}

func TestTextDistance(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	t1 := Text{X: 0, Y: 0, W: 10, FontSize: 10}
	t2 := Text{X: 30, Y: 40, W: 10, FontSize: 10}
	if d := idx.textDistance(t1, t2); d != 50 {
		t.Errorf("distance = %f, want 50", d)
	}

	t3 := Text{X: 10, Y: 20, W: 5, FontSize: 5}
	if d := idx.textDistance(t3, t3); d != 0 {
		t.Errorf("distance = %f, want 0 for identical positions", d)
	}
}

func TestNodeDistance(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	n1 := &spatialNode{bounds: Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 10, Y: 10}}}
	n2 := &spatialNode{bounds: Rect{Min: Point{X: 20, Y: 30}, Max: Point{X: 30, Y: 40}}}

	const want = 36.05551275463989
	if d := idx.nodeDistance(n1, n2); d < want-0.001 || d > want+0.001 {
		t.Errorf("distance = %f, want ~%f", d, want)
	}
}

func TestSpatialIndexInterfaceConformance(t *testing.T) {
	texts := []Text{{S: "test", X: 100, Y: 200, W: 30, FontSize: 12}}
	var iface SpatialIndexInterface = NewSpatialIndexInterface(texts)

	results := iface.Query(Rect{Min: Point{X: 90, Y: 190}, Max: Point{X: 140, Y: 210}})
	if len(results) == 0 {
		t.Error("expected the interface-backed index to find the seeded text")
	}

	iface.Insert(Text{S: "new", X: 110, Y: 210, W: 25, FontSize: 10})
}

func TestSpatialNodeStructure(t *testing.T) {
	leaf := &spatialNode{
		bounds: Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 10, Y: 10}},
		leaf:   true,
		texts:  []Text{{S: "test", X: 1, Y: 1, W: 2, FontSize: 2}},
		level:  0,
	}
	if !leaf.leaf || leaf.level != 0 || len(leaf.texts) != 1 || leaf.children != nil {
		t.Errorf("unexpected leaf node shape: %+v", leaf)
	}

	internal := &spatialNode{
		bounds:   Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 20, Y: 20}},
		leaf:     false,
		level:    1,
		children: []*spatialNode{leaf},
	}
	if internal.leaf || internal.level != 1 || internal.texts != nil || len(internal.children) != 1 {
		t.Errorf("unexpected internal node shape: %+v", internal)
	}
}

func TestQuadraticSplitTexts(t *testing.T) {
	idx := newTextSpatialIndex(nil)

	texts := []Text{
		{X: 0, Y: 0, W: 5, FontSize: 5},
		{X: 100, Y: 100, W: 5, FontSize: 5},
		{X: 1, Y: 1, W: 5, FontSize: 5},
		{X: 99, Y: 99, W: 5, FontSize: 5},
	}

	g1, g2 := idx.quadraticSplitTexts(texts)
	if len(g1) == 0 || len(g2) == 0 {
		t.Error("expected both split groups to be non-empty")
	}
	if len(g1)+len(g2) != len(texts) {
		t.Errorf("split lost elements: got %d, want %d", len(g1)+len(g2), len(texts))
	}
}

func TestTextSpatialIndexQueryWithNoMatches(t *testing.T) {
	texts := []Text{{S: "text1", X: 100, Y: 200, W: 30, FontSize: 12}}
	idx := newTextSpatialIndex(texts)

	results := idx.Query(Rect{Min: Point{X: 500, Y: 500}, Max: Point{X: 600, Y: 600}})
	if len(results) != 0 {
		t.Errorf("expected 0 results for a non-overlapping query, got %d", len(results))
	}
}

func TestTextSpatialIndexBulkLoadAndInsert(t *testing.T) {
	multi := []Text{
		{S: "text1", X: 100, Y: 200, W: 30, FontSize: 12},
		{S: "text2", X: 150, Y: 250, W: 40, FontSize: 10},
		{S: "text3", X: 200, Y: 300, W: 50, FontSize: 14},
	}
	idx := newTextSpatialIndex(multi)

	results := idx.Query(Rect{Min: Point{X: 90, Y: 190}, Max: Point{X: 160, Y: 260}})
	if len(results) == 0 {
		t.Error("expected at least one text in the query bounds")
	}

	idx.Insert(Text{S: "new", X: 250, Y: 350, W: 30, FontSize: 12})

	newResults := idx.Query(Rect{Min: Point{X: 240, Y: 340}, Max: Point{X: 290, Y: 370}})
	found := false
	for _, text := range newResults {
		if text.S == "new" {
			found = true
		}
	}
	if !found {
		t.Error("inserted text not found in subsequent query")
	}
}

func BenchmarkTextSpatialIndexCreation(b *testing.B) {
	texts := make([]Text, 1000)
	for i := range texts {
		texts[i] = Text{X: float64(i * 10), Y: float64((i / 10) * 20), W: 10, FontSize: 12}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = newTextSpatialIndex(texts)
	}
}

func BenchmarkTextSpatialIndexQuery(b *testing.B) {
	texts := make([]Text, 1000)
	for i := range texts {
		texts[i] = Text{X: float64(i * 10), Y: float64((i / 10) * 20), W: 10, FontSize: 12}
	}

	idx := newTextSpatialIndex(texts)
	bounds := Rect{Min: Point{X: 0, Y: 0}, Max: Point{X: 500, Y: 500}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Query(bounds)
	}
}
