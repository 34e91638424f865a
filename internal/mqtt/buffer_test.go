package mqtt

import "testing"

func TestRingBufferPushDrain(t *testing.T) {
	r := newRingBuffer(4)

	r.push(bufferedMsg{topic: "a"})
	r.push(bufferedMsg{topic: "b"})
	r.push(bufferedMsg{topic: "c"})

	if r.len() != 3 {
		t.Fatalf("len = %d, want 3", r.len())
	}

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("drained %d, want 3", len(msgs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if msgs[i].topic != want {
			t.Errorf("msgs[%d].topic = %q, want %q", i, msgs[i].topic, want)
		}
	}

	if r.len() != 0 {
		t.Errorf("len after drain = %d, want 0", r.len())
	}
	if r.drainAll() != nil {
		t.Error("second drain should return nil")
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(2)

	r.push(bufferedMsg{topic: "a"})
	r.push(bufferedMsg{topic: "b"})
	r.push(bufferedMsg{topic: "c"})

	if !r.overflowed() {
		t.Error("expected overflow flag")
	}

	msgs := r.drainAll()
	if len(msgs) != 2 {
		t.Fatalf("drained %d, want 2", len(msgs))
	}
	if msgs[0].topic != "b" || msgs[1].topic != "c" {
		t.Errorf("expected [b c], got [%s %s]", msgs[0].topic, msgs[1].topic)
	}

	if r.overflowed() {
		t.Error("overflow flag should clear on drain")
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	r := newRingBuffer(3)

	r.push(bufferedMsg{topic: "a"})
	r.push(bufferedMsg{topic: "b"})
	r.drainAll()

	r.push(bufferedMsg{topic: "c"})
	r.push(bufferedMsg{topic: "d"})
	r.push(bufferedMsg{topic: "e"})

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("drained %d, want 3", len(msgs))
	}
	for i, want := range []string{"c", "d", "e"} {
		if msgs[i].topic != want {
			t.Errorf("msgs[%d].topic = %q, want %q", i, msgs[i].topic, want)
		}
	}
}
