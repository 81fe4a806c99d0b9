// Package slicer partitions a sticker sheet into equal grid cells.
//
// A sheet of W x H pixels cut into cols x rows yields cells of
// floor(W/cols) x floor(H/rows) pixels. When the sheet does not divide evenly
// the leftover strip on the right and bottom edges is dropped rather than
// spread over the cells, so every sticker comes from an identically sized
// region.
package slicer
