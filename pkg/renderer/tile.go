package renderer

import (
	"image"
	"math/rand"
)

// Tile is one unit of parallel work. Image-space passes give each tile a
// pixel rectangle; splatting passes give it a batch of samples.
type Tile struct {
	ID      int             // Unique tile identifier, also the seed offset
	Bounds  image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Samples int             // Number of samples for splatting passes
	Random  *rand.Rand      // Tile-specific random generator for deterministic results
}

// NewTile creates a new tile with a random generator derived from seed and id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Random: rand.New(rand.NewSource(seed + int64(id) + 42)), // +42 to avoid seed 0
	}
}

// NewTileGrid divides an image into tiles of at most tileSize pixels square
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}

// NewSampleBatches splits total samples into batches of at most batchSize
func NewSampleBatches(total, batchSize int, seed int64) []*Tile {
	var batches []*Tile
	for id := 0; total > 0; id++ {
		n := min(batchSize, total)
		tile := NewTile(id, image.Rectangle{}, seed)
		tile.Samples = n
		batches = append(batches, tile)
		total -= n
	}
	return batches
}
