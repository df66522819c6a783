package matching

import "github.com/shopspring/decimal"

// Red-black tree keyed by price, one node per non-empty price level.
// Best-price lookup, insert and delete are all O(log n) in the number of
// distinct levels, which keeps the matching loop sub-linear as depth grows.

type nodeColor uint8

const (
	red   nodeColor = 0
	black nodeColor = 1
)

type treeNode struct {
	key    decimal.Decimal
	level  *priceLevel
	color  nodeColor
	left   *treeNode
	right  *treeNode
	parent *treeNode
}

type priceTree struct {
	root     *treeNode
	sentinel *treeNode
	size     int
}

func newPriceTree() *priceTree {
	s := &treeNode{color: black}
	return &priceTree{root: s, sentinel: s}
}

func (t *priceTree) Size() int { return t.size }

// Find returns the level at an exact price, or nil
func (t *priceTree) Find(price decimal.Decimal) *priceLevel {
	n := t.root
	for n != t.sentinel {
		switch price.Cmp(n.key) {
		case -1:
			n = n.left
		case 1:
			n = n.right
		default:
			return n.level
		}
	}
	return nil
}

// Upsert returns the level at price, creating it if absent
func (t *priceTree) Upsert(price decimal.Decimal) *priceLevel {
	y := t.sentinel
	x := t.root
	for x != t.sentinel {
		y = x
		switch price.Cmp(x.key) {
		case -1:
			x = x.left
		case 1:
			x = x.right
		default:
			return x.level
		}
	}
	lvl := newPriceLevel(price)
	z := &treeNode{key: price, level: lvl, color: red, left: t.sentinel, right: t.sentinel, parent: y}
	if y == t.sentinel {
		t.root = z
	} else if price.Cmp(y.key) < 0 {
		y.left = z
	} else {
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return lvl
}

// Delete removes the level at price. Returns false if absent.
func (t *priceTree) Delete(price decimal.Decimal) bool {
	z := t.searchNode(price)
	if z == t.sentinel {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

// Min returns the lowest-priced level, or nil on an empty tree
func (t *priceTree) Min() *priceLevel {
	n := t.minNode(t.root)
	if n == t.sentinel {
		return nil
	}
	return n.level
}

// Max returns the highest-priced level, or nil on an empty tree
func (t *priceTree) Max() *priceLevel {
	n := t.maxNode(t.root)
	if n == t.sentinel {
		return nil
	}
	return n.level
}

// Ascending visits levels from lowest to highest price until fn returns false
func (t *priceTree) Ascending(fn func(*priceLevel) bool) {
	for n := t.minNode(t.root); n != t.sentinel; n = t.successor(n) {
		if !fn(n.level) {
			return
		}
	}
}

// Descending visits levels from highest to lowest price until fn returns false
func (t *priceTree) Descending(fn func(*priceLevel) bool) {
	for n := t.maxNode(t.root); n != t.sentinel; n = t.predecessor(n) {
		if !fn(n.level) {
			return
		}
	}
}

func (t *priceTree) searchNode(price decimal.Decimal) *treeNode {
	n := t.root
	for n != t.sentinel {
		switch price.Cmp(n.key) {
		case -1:
			n = n.left
		case 1:
			n = n.right
		default:
			return n
		}
	}
	return t.sentinel
}

func (t *priceTree) minNode(n *treeNode) *treeNode {
	if n == t.sentinel {
		return t.sentinel
	}
	for n.left != t.sentinel {
		n = n.left
	}
	return n
}

func (t *priceTree) maxNode(n *treeNode) *treeNode {
	if n == t.sentinel {
		return t.sentinel
	}
	for n.right != t.sentinel {
		n = n.right
	}
	return n
}

func (t *priceTree) successor(n *treeNode) *treeNode {
	if n.right != t.sentinel {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.sentinel && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *priceTree) predecessor(n *treeNode) *treeNode {
	if n.left != t.sentinel {
		return t.maxNode(n.left)
	}
	p := n.parent
	for p != t.sentinel && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (t *priceTree) rotateLeft(x *treeNode) {
	y := x.right
	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *priceTree) rotateRight(x *treeNode) {
	y := x.left
	x.left = y.right
	if y.right != t.sentinel {
		y.right.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x == x.parent.right {
		x.parent.right = y
	} else {
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *priceTree) insertFixup(z *treeNode) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rotateRight(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *priceTree) transplant(u, v *treeNode) {
	if u.parent == t.sentinel {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *priceTree) deleteNode(z *treeNode) {
	y := z
	yColor := y.color
	var x *treeNode
	if z.left == t.sentinel {
		x = z.right
		t.transplant(z, z.right)
	} else if z.right == t.sentinel {
		x = z.left
		t.transplant(z, z.left)
	} else {
		y = t.minNode(z.right)
		yColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}
	if yColor == black {
		t.deleteFixup(x)
	}
}

func (t *priceTree) deleteFixup(x *treeNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rotateRight(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
