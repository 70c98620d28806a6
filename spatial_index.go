// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"math"
)

// textSpatialIndex is an R-tree over a page's text runs, used by the text
// classifier to answer "what else is near this run" without an O(n^2) scan.
type textSpatialIndex struct {
	root       *spatialNode
	texts      []Text
	maxEntries int
	minEntries int
}

type spatialNode struct {
	bounds   Rect
	children []*spatialNode
	leaf     bool
	texts    []Text // only set on leaves
	level    int    // 0 at the leaves
}

// newTextSpatialIndex bulk-loads an R-tree from a page's text runs.
func newTextSpatialIndex(texts []Text) *textSpatialIndex {
	idx := &textSpatialIndex{
		maxEntries: 10,
		minEntries: 4,
	}

	if len(texts) == 0 {
		return idx
	}

	idx.texts = texts
	idx.root = idx.buildTree(texts)

	return idx
}

// buildTree builds the R-tree from a set of text elements.
func (idx *textSpatialIndex) buildTree(texts []Text) *spatialNode {
	if len(texts) == 0 {
		return nil
	}

	if len(texts) <= idx.maxEntries {
		leaf := &spatialNode{
			leaf:  true,
			texts: texts,
			level: 0,
		}
		leaf.bounds = idx.calculateBounds(texts)
		return leaf
	}

	root := &spatialNode{
		leaf:  false,
		level: 1,
	}

	for _, group := range idx.partitionTexts(texts, idx.maxEntries) {
		if child := idx.buildTree(group); child != nil {
			root.children = append(root.children, child)
		}
	}

	root.bounds = idx.calculateNodeBounds(root)

	return root
}

// partitionTexts groups texts by X position into maxGroupSize-sized chunks,
// a cheap stand-in for the R-tree STR bulk-load heuristic.
func (idx *textSpatialIndex) partitionTexts(texts []Text, maxGroupSize int) [][]Text {
	if len(texts) <= maxGroupSize {
		return [][]Text{texts}
	}

	sorted := make([]Text, len(texts))
	copy(sorted, texts)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[i].X > sorted[j].X {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}

	var groups [][]Text
	for i := 0; i < len(sorted); i += maxGroupSize {
		end := i + maxGroupSize
		if end > len(sorted) {
			end = len(sorted)
		}
		groups = append(groups, sorted[i:end])
	}

	return groups
}

func (idx *textSpatialIndex) calculateBounds(texts []Text) Rect {
	if len(texts) == 0 {
		return Rect{}
	}

	minX, minY := texts[0].X, texts[0].Y
	maxX, maxY := texts[0].X+texts[0].W, texts[0].Y+texts[0].FontSize

	for _, t := range texts[1:] {
		minX = math.Min(minX, t.X)
		minY = math.Min(minY, t.Y)
		maxX = math.Max(maxX, t.X+t.W)
		maxY = math.Max(maxY, t.Y+t.FontSize)
	}

	return Rect{Min: Point{X: minX, Y: minY}, Max: Point{X: maxX, Y: maxY}}
}

func (idx *textSpatialIndex) calculateNodeBounds(node *spatialNode) Rect {
	if node.leaf {
		return idx.calculateBounds(node.texts)
	}
	if len(node.children) == 0 {
		return Rect{}
	}

	bounds := node.children[0].bounds
	for _, child := range node.children[1:] {
		bounds = idx.expandBounds(bounds, child.bounds)
	}

	return bounds
}

func (idx *textSpatialIndex) expandBounds(r1, r2 Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r1.Min.X, r2.Min.X), Y: math.Min(r1.Min.Y, r2.Min.Y)},
		Max: Point{X: math.Max(r1.Max.X, r2.Max.X), Y: math.Max(r1.Max.Y, r2.Max.Y)},
	}
}

// Insert adds a text run to the index, splitting nodes that overflow.
func (idx *textSpatialIndex) Insert(text Text) {
	if idx.root == nil {
		idx.root = &spatialNode{
			leaf:  true,
			texts: []Text{text},
			level: 0,
			bounds: Rect{
				Min: Point{X: text.X, Y: text.Y},
				Max: Point{X: text.X + text.W, Y: text.Y + text.FontSize},
			},
		}
		idx.texts = append(idx.texts, text)
		return
	}

	splitNode, newNode := idx.insertNode(idx.root, text, 0)
	if splitNode != nil {
		idx.root = &spatialNode{
			bounds:   idx.expandBounds(splitNode.bounds, newNode.bounds),
			children: []*spatialNode{splitNode, newNode},
			leaf:     false,
			level:    splitNode.level + 1,
		}
	}

	idx.texts = append(idx.texts, text)
}

func (idx *textSpatialIndex) insertNode(node *spatialNode, text Text, level int) (splitNode, newNode *spatialNode) {
	textBounds := Rect{
		Min: Point{X: text.X, Y: text.Y},
		Max: Point{X: text.X + text.W, Y: text.Y + text.FontSize},
	}

	if node.level != level {
		return node, nil
	}

	if node.leaf {
		node.texts = append(node.texts, text)
		node.bounds = idx.expandBounds(node.bounds, textBounds)
		if len(node.texts) > idx.maxEntries {
			return idx.splitNode(node)
		}
		return nil, nil
	}

	bestChild := idx.chooseBestSubtree(node, textBounds)
	splitChild, newChild := idx.insertNode(bestChild, text, level)

	if newChild != nil {
		newChildren := make([]*spatialNode, 0, len(node.children)+1)
		for _, child := range node.children {
			if child == bestChild {
				newChildren = append(newChildren, splitChild, newChild)
			} else {
				newChildren = append(newChildren, child)
			}
		}
		node.children = newChildren
		node.bounds = idx.calculateNodeBounds(node)

		if len(node.children) > idx.maxEntries {
			return idx.splitNode(node)
		}
		return nil, nil
	}

	node.bounds = idx.expandBounds(node.bounds, textBounds)
	return nil, nil
}

func (idx *textSpatialIndex) chooseBestSubtree(node *spatialNode, bounds Rect) *spatialNode {
	var best *spatialNode
	minIncrease := math.MaxFloat64

	for _, child := range node.children {
		currentArea := idx.rectangleArea(child.bounds)
		unionArea := idx.rectangleArea(idx.expandBounds(child.bounds, bounds))
		increase := unionArea - currentArea

		if best == nil || increase < minIncrease || (increase == minIncrease && idx.rectangleArea(child.bounds) < idx.rectangleArea(best.bounds)) {
			minIncrease = increase
			best = child
		}
	}

	return best
}

func (idx *textSpatialIndex) rectangleArea(r Rect) float64 {
	width := r.Max.X - r.Min.X
	height := r.Max.Y - r.Min.Y
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * height
}

// splitNode performs a quadratic split on an overfull node.
func (idx *textSpatialIndex) splitNode(node *spatialNode) (*spatialNode, *spatialNode) {
	if node.leaf {
		group1, group2 := idx.quadraticSplitTexts(node.texts)

		n1 := &spatialNode{leaf: true, texts: group1, level: node.level}
		n1.bounds = idx.calculateBounds(group1)

		n2 := &spatialNode{leaf: true, texts: group2, level: node.level}
		n2.bounds = idx.calculateBounds(group2)

		return n1, n2
	}

	group1, group2 := idx.quadraticSplitNodes(node.children)

	n1 := &spatialNode{children: group1, leaf: false, level: node.level}
	n1.bounds = idx.calculateNodeBounds(n1)

	n2 := &spatialNode{children: group2, leaf: false, level: node.level}
	n2.bounds = idx.calculateNodeBounds(n2)

	return n1, n2
}

func (idx *textSpatialIndex) quadraticSplitTexts(texts []Text) ([]Text, []Text) {
	if len(texts) <= 1 {
		return texts, []Text{}
	}

	maxDistance := -1.0
	var idx1, idx2 int
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			if dist := idx.textDistance(texts[i], texts[j]); dist > maxDistance {
				maxDistance = dist
				idx1, idx2 = i, j
			}
		}
	}

	group1 := []Text{texts[idx1]}
	group2 := []Text{texts[idx2]}

	for i, text := range texts {
		if i == idx1 || i == idx2 {
			continue
		}
		if idx.textDistance(text, texts[idx1]) < idx.textDistance(text, texts[idx2]) {
			group1 = append(group1, text)
		} else {
			group2 = append(group2, text)
		}
	}

	return group1, group2
}

func (idx *textSpatialIndex) quadraticSplitNodes(nodes []*spatialNode) ([]*spatialNode, []*spatialNode) {
	if len(nodes) <= 1 {
		return nodes, []*spatialNode{}
	}

	maxDistance := -1.0
	var idx1, idx2 int
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if dist := idx.nodeDistance(nodes[i], nodes[j]); dist > maxDistance {
				maxDistance = dist
				idx1, idx2 = i, j
			}
		}
	}

	group1 := []*spatialNode{nodes[idx1]}
	group2 := []*spatialNode{nodes[idx2]}

	for i, node := range nodes {
		if i == idx1 || i == idx2 {
			continue
		}
		if idx.nodeDistance(node, nodes[idx1]) < idx.nodeDistance(node, nodes[idx2]) {
			group1 = append(group1, node)
		} else {
			group2 = append(group2, node)
		}
	}

	return group1, group2
}

func (idx *textSpatialIndex) textDistance(t1, t2 Text) float64 {
	c1 := Point{X: t1.X + t1.W/2, Y: t1.Y + t1.FontSize/2}
	c2 := Point{X: t2.X + t2.W/2, Y: t2.Y + t2.FontSize/2}
	dx, dy := c1.X-c2.X, c1.Y-c2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (idx *textSpatialIndex) nodeDistance(n1, n2 *spatialNode) float64 {
	c1 := Point{X: (n1.bounds.Min.X + n1.bounds.Max.X) / 2, Y: (n1.bounds.Min.Y + n1.bounds.Max.Y) / 2}
	c2 := Point{X: (n2.bounds.Min.X + n2.bounds.Max.X) / 2, Y: (n2.bounds.Min.Y + n2.bounds.Max.Y) / 2}
	dx, dy := c1.X-c2.X, c1.Y-c2.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Query returns the text runs whose bounds intersect the given rectangle.
func (idx *textSpatialIndex) Query(bounds Rect) []Text {
	if idx.root == nil {
		return []Text{}
	}
	return idx.queryNode(idx.root, bounds)
}

func (idx *textSpatialIndex) queryNode(node *spatialNode, bounds Rect) []Text {
	if !idx.intersects(node.bounds, bounds) {
		return []Text{}
	}

	if node.leaf {
		var results []Text
		for _, t := range node.texts {
			textBounds := Rect{Min: Point{X: t.X, Y: t.Y}, Max: Point{X: t.X + t.W, Y: t.Y + t.FontSize}}
			if idx.intersects(textBounds, bounds) {
				results = append(results, t)
			}
		}
		return results
	}

	var results []Text
	for _, child := range node.children {
		results = append(results, idx.queryNode(child, bounds)...)
	}
	return results
}

func (idx *textSpatialIndex) intersects(r1, r2 Rect) bool {
	return !(r1.Max.X < r2.Min.X || r1.Min.X > r2.Max.X || r1.Max.Y < r2.Min.Y || r1.Min.Y > r2.Max.Y)
}

// SpatialIndexInterface abstracts over the text-classifier's spatial lookup
// so alternate index implementations can be swapped in behind it.
type SpatialIndexInterface interface {
	Query(bounds Rect) []Text
	Insert(text Text)
}

// NewSpatialIndexInterface builds the spatial index used for context-aware
// text classification.
func NewSpatialIndexInterface(texts []Text) SpatialIndexInterface {
	return newTextSpatialIndex(texts)
}
