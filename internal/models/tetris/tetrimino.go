package tetris

// Tetromino はテトリミノの種類を表します。タグ値は仕様上の正準順序
// {O, I, S, Z, T, L, J} = 1..7 に固定されており、盤面セルのタイル
// タグとしてそのまま書き込まれます。
type Tetromino int

const (
	O Tetromino = iota + 1
	I
	S
	Z
	T
	L
	J
)

// String はログ・デバッグ表示用の一文字表現を返します。
func (t Tetromino) String() string {
	switch t {
	case O:
		return "O"
	case I:
		return "I"
	case S:
		return "S"
	case Z:
		return "Z"
	case T:
		return "T"
	case L:
		return "L"
	case J:
		return "J"
	default:
		return "?"
	}
}

// AllTetrominoes は生成器が重み付けの対象にする全7種を正準順序で返します。
var AllTetrominoes = [7]Tetromino{O, I, S, Z, T, L, J}

// Orientation は回転状態 N/E/S/W を表します。右回転は mod 4 の加算です。
type Orientation int

const (
	N Orientation = iota
	E
	S
	W
)

// RotateR は自身から右に rightTurns 回転した向きを返します。負の回転数も
// ユークリッド剰余で正しく扱います（例: -1 turn は W）。
func (o Orientation) RotateR(rightTurns int) Orientation {
	base := int(o)
	next := (base + rightTurns) % 4
	if next < 0 {
		next += 4
	}
	return Orientation(next)
}

// Coord は盤面上の整数座標 (列, 行) です。行は 0 が最下段。
type Coord struct {
	X, Y int
}

// minoTable は (形状, 向き) ごとの4マスの相対オフセットです。
// spec.md §6 の座標表をそのまま転記したもので、回転軸の変更は伴いません。
var minoTable = map[Tetromino]map[Orientation][4]Coord{
	O: {
		N: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		E: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		S: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		W: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	I: {
		N: {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		S: {{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		E: {{0, 0}, {0, 1}, {0, 2}, {0, 3}},
		W: {{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	},
	S: {
		N: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		S: {{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		E: {{1, 0}, {0, 1}, {1, 1}, {0, 2}},
		W: {{1, 0}, {0, 1}, {1, 1}, {0, 2}},
	},
	Z: {
		N: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		S: {{1, 0}, {2, 0}, {0, 1}, {1, 1}},
		E: {{0, 0}, {0, 1}, {1, 1}, {1, 2}},
		W: {{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	T: {
		N: {{0, 0}, {1, 0}, {2, 0}, {1, 1}},
		E: {{0, 0}, {0, 1}, {1, 1}, {0, 2}},
		S: {{1, 0}, {0, 1}, {1, 1}, {2, 1}},
		W: {{1, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	L: {
		N: {{0, 0}, {1, 0}, {2, 0}, {2, 1}},
		E: {{0, 0}, {1, 0}, {0, 1}, {0, 2}},
		S: {{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		W: {{1, 0}, {1, 1}, {0, 2}, {1, 2}},
	},
	J: {
		N: {{0, 0}, {1, 0}, {2, 0}, {0, 1}},
		E: {{0, 0}, {0, 1}, {0, 2}, {1, 2}},
		S: {{2, 0}, {0, 1}, {1, 1}, {2, 1}},
		W: {{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
}

// ActivePiece は盤上を動く1つのテトロミノ: 形状、向き、基準点(アンカー)です。
type ActivePiece struct {
	Shape  Tetromino
	Facing Orientation
	Anchor Coord
}

// Minos は基準点を加えた4マスの絶対座標を返します。
func (p ActivePiece) Minos() [4]Coord {
	offsets := minoTable[p.Shape][p.Facing]
	var out [4]Coord
	for i, o := range offsets {
		out[i] = Coord{p.Anchor.X + o.X, p.Anchor.Y + o.Y}
	}
	return out
}

// Translated は (dx, dy) だけ平行移動した新しいピースを返します。向きは変えません。
func (p ActivePiece) Translated(dx, dy int) ActivePiece {
	q := p
	q.Anchor = Coord{p.Anchor.X + dx, p.Anchor.Y + dy}
	return q
}

// Rotated は向きのみを right_turns 回転させた新しいピースを返します（基準点は不変）。
// キック適用は呼び出し側（rotation system）の責務です。
func (p ActivePiece) Rotated(rightTurns int) ActivePiece {
	q := p
	q.Facing = p.Facing.RotateR(rightTurns)
	return q
}
