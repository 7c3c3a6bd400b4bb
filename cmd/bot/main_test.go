package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"farmstead.dev/internal/protocol"
)

func TestNearestTree(t *testing.T) {
	if _, ok := nearestTree(mgl32.Vec2{}, nil); ok {
		t.Fatalf("no trees should report none")
	}
	trees := []protocol.TreeView{
		{ID: "T1", Pos: [2]float32{-4, 2}},
		{ID: "T2", Pos: [2]float32{1, 1}},
		{ID: "T3", Pos: [2]float32{5, 5}},
	}
	got, ok := nearestTree(mgl32.Vec2{2, 0}, trees)
	if !ok || got.ID != "T2" {
		t.Fatalf("nearest=%v ok=%v want T2", got.ID, ok)
	}
}
