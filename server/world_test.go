package server

import (
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestApplyMoveIsUnclampedSum(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddPlayer(1)

	var wantX, wantY float64
	for i := 0; i < 150; i++ {
		w.ApplyMove(1, DirRight)
		wantX += DefaultPlayerSpeed
	}
	for i := 0; i < 37; i++ {
		w.ApplyMove(1, DirDown)
		wantY -= DefaultPlayerSpeed
	}
	w.ApplyMove(1, DirLeft)
	wantX -= DefaultPlayerSpeed
	w.ApplyMove(1, DirUp)
	wantY += DefaultPlayerSpeed

	p, ok := w.Player(1)
	if !ok {
		t.Fatalf("player 1 missing")
	}
	if p.X != wantX || p.Y != wantY {
		t.Fatalf("position = (%v, %v), want (%v, %v)", p.X, p.Y, wantX, wantY)
	}
	if p.X <= DefaultMapSize {
		t.Fatalf("expected x beyond map bounds, got %v", p.X)
	}
}

func TestApplyMoveUnknownPlayer(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	if w.ApplyMove(9, DirUp) {
		t.Fatalf("move for unknown player should report false")
	}
	if _, ok := w.MoveAndCollect(9, DirUp); ok {
		t.Fatalf("collect for unknown player should report false")
	}
}

func TestMoveAndCollectRemovesEachCoinOnce(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddPlayer(1)
	w.AddCoin(Coin{X: 0.2, Y: 0.2})  // hit
	w.AddCoin(Coin{X: 3, Y: 3})      // miss
	w.AddCoin(Coin{X: 0.4, Y: -0.1}) // hit
	w.AddCoin(Coin{X: -4, Y: 1})     // miss
	w.AddCoin(Coin{X: 0.1, Y: 0})    // hit

	n, ok := w.MoveAndCollect(1, DirRight)
	if !ok || n != 3 {
		t.Fatalf("collected = %d (ok=%v), want 3", n, ok)
	}
	coins := w.SnapshotCoins()
	want := []Coin{{X: 3, Y: 3}, {X: -4, Y: 1}}
	if len(coins) != len(want) || coins[0] != want[0] || coins[1] != want[1] {
		t.Fatalf("remaining coins:\n%s", spew.Sdump(coins))
	}

	// 回到原点，不会再次拾取已移除的金币
	n, _ = w.MoveAndCollect(1, DirLeft)
	if n != 0 {
		t.Fatalf("second pass collected %d coins", n)
	}
	p, _ := w.Player(1)
	if p.Score != 3 {
		t.Fatalf("score = %d, want 3", p.Score)
	}
}

func TestPickupRadiusIsStrict(t *testing.T) {
	w := NewWorld(0.5, DefaultPickupRadius)
	w.AddPlayer(1)
	w.AddCoin(Coin{X: 1.0, Y: 0}) // |dx| == 0.5 after the move
	if n, _ := w.MoveAndCollect(1, DirRight); n != 0 {
		t.Fatalf("coin at exactly the pickup radius was collected")
	}
}

func TestScoreNeverDecreases(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddPlayer(1)
	last := 0
	dirs := []Direction{DirRight, DirUp, DirLeft, DirDown}
	for i := 0; i < 40; i++ {
		if i%3 == 0 {
			w.AddCoin(Coin{})
		}
		w.MoveAndCollect(1, dirs[i%len(dirs)])
		p, _ := w.Player(1)
		if p.Score < last {
			t.Fatalf("score dropped from %d to %d at step %d", last, p.Score, i)
		}
		last = p.Score
	}
	if got := len(w.SnapshotCoins()); got+last != 14 {
		t.Fatalf("score %d + remaining %d != spawned 14", last, got)
	}
}

func TestRemoveCoinBounds(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddCoin(Coin{X: 1})
	w.AddCoin(Coin{X: 2})
	if w.RemoveCoin(-1) || w.RemoveCoin(2) {
		t.Fatalf("out of range removal should fail")
	}
	if !w.RemoveCoin(0) {
		t.Fatalf("remove index 0 failed")
	}
	if coins := w.SnapshotCoins(); len(coins) != 1 || coins[0].X != 2 {
		t.Fatalf("unexpected coins: %v", coins)
	}
}

func TestSetShapeFallsBackToSquare(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddPlayer(1)
	w.SetShape(1, ShapeTriangle)
	if p, _ := w.Player(1); p.Shape != ShapeTriangle {
		t.Fatalf("shape = %v, want triangle", p.Shape)
	}
	w.SetShape(1, Shape(42))
	if p, _ := w.Player(1); p.Shape != ShapeSquare {
		t.Fatalf("shape = %v, want square", p.Shape)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddPlayer(1)
	w.AddCoin(Coin{X: 5, Y: 5})
	s := w.Snapshot()

	w.ApplyMove(1, DirRight)
	w.RemoveCoin(0)
	w.RemovePlayer(1)

	if s.Players[1] != (Position{}) || len(s.Coins) != 1 || s.Shapes[1] != ShapeSquare || s.Scores[1] != 0 {
		t.Fatalf("snapshot changed after mutation:\n%s", spew.Sdump(s))
	}
}

func TestConcurrentMovesAndSnapshots(t *testing.T) {
	w := NewWorld(DefaultPlayerSpeed, DefaultPickupRadius)
	w.AddPlayer(1)
	const workers, moves = 8, 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < moves; j++ {
				w.MoveAndCollect(1, DirUp)
			}
		}()
	}
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				_ = w.Snapshot()
			}
		}
	}()
	wg.Wait()
	close(done)

	var want float64
	for i := 0; i < workers*moves; i++ {
		want += DefaultPlayerSpeed
	}
	if p, _ := w.Player(1); p.Y != want {
		t.Fatalf("y = %v, want %v", p.Y, want)
	}
}
