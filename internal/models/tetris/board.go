package tetris

const (
	Width   = 10 // 盤面の列数
	Height  = 40 // 盤面の行数（プレイフィールド20行 + バッファ20行）
	Skyline = 20 // 可視セリングの行インデックス。これ以上は隠しバッファ領域
)

// neutral/frozen タイル用に予約された範囲の下限（spec §3）。
const NeutralTileMin = 254

// Board は盤面を表す固定サイズ配列です。Board[y][x] の y=0 が最下段、
// y が大きくなるほど上に向かいます。ピースはアンカー座標のYを減算しながら
// 落下します。0 はセル空、1..7 はテトロミノのタイル種別、254以上は
// modifier が使う中立/凍結タイルです。
type Board [Height][Width]int

// NewBoard は空の盤面を返します。
func NewBoard() Board {
	return Board{}
}

// inBounds は座標が盤面の境界内にあるかを返します。
func inBounds(c Coord) bool {
	return c.X >= 0 && c.X < Width && c.Y >= 0 && c.Y < Height
}

// Fits は指定ピースの4マスすべてが境界内かつ空セルかどうかを判定します。
func (b *Board) Fits(p ActivePiece) bool {
	for _, c := range p.Minos() {
		if !inBounds(c) {
			return false
		}
		if b[c.Y][c.X] != 0 {
			return false
		}
	}
	return true
}

// Lock はピースの4マスをその tile-type タグでボードへ書き込みます。
// 呼び出し前に Fits で適合性を確認している前提です。
func (b *Board) Lock(p ActivePiece) {
	for _, c := range p.Minos() {
		if inBounds(c) {
			b[c.Y][c.X] = int(p.Shape)
		}
	}
}

// FullRows は完全に埋まっている行のインデックス（昇順）を返します。
func (b *Board) FullRows() []int {
	var rows []int
	for y := 0; y < Height; y++ {
		full := true
		for x := 0; x < Width; x++ {
			if b[y][x] == 0 {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, y)
		}
	}
	return rows
}

// ClearRows は与えられた行を取り除き、その上にあった行を下に詰めます。
// rows は昇順でなくても構いません。
func (b *Board) ClearRows(rows []int) {
	if len(rows) == 0 {
		return
	}
	cleared := make(map[int]bool, len(rows))
	for _, r := range rows {
		cleared[r] = true
	}
	var kept Board
	destY := 0
	for y := 0; y < Height; y++ {
		if cleared[y] {
			continue
		}
		kept[destY] = b[y]
		destY++
	}
	*b = kept
}

// IsEmpty は盤面に何も積まれていないかを返します（パーフェクトクリア判定用）。
func (b *Board) IsEmpty() bool {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if b[y][x] != 0 {
				return false
			}
		}
	}
	return true
}
