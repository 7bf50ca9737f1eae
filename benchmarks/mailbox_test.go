package benchmarks

import (
	"strconv"
	"testing"
	"time"

	"github.com/randalmurphal/mailbox/pkg/mailbox"
)

// BenchmarkSend measures posting to a single key.
func BenchmarkSend(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		box.Send("key", i)
	}
}

// BenchmarkSend_DistinctKeys measures posting across a growing key set.
func BenchmarkSend_DistinctKeys(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()

	keys := make([]string, 256)
	for i := range keys {
		keys[i] = "key-" + strconv.Itoa(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		box.Send(keys[i%len(keys)], i)
	}
}

// BenchmarkSendConsume measures a full post-and-pickup round trip.
func BenchmarkSendConsume(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		box.Send("key", i)
		box.ConsumeWithin("key", 0)
	}
}

// BenchmarkConsume_Miss measures a non-blocking lookup of an absent key.
func BenchmarkConsume_Miss(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		box.ConsumeWithin("absent", 0)
	}
}

// BenchmarkHas measures a presence check against a populated table.
func BenchmarkHas(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()

	for i := 0; i < 100; i++ {
		box.Send("key-"+strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		box.Has("key-50")
	}
}

// BenchmarkSendConsume_Parallel measures contended round trips, one key
// per goroutine.
func BenchmarkSendConsume_Parallel(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()

	b.RunParallel(func(pb *testing.PB) {
		key := "key-" + strconv.Itoa(int(time.Now().UnixNano()))
		i := 0
		for pb.Next() {
			box.Send(key, i)
			box.ConsumeWithin(key, 0)
			i++
		}
	})
}

// BenchmarkWait_Hit measures Wait when the entry is already present.
func BenchmarkWait_Hit(b *testing.B) {
	box := mailbox.New[int]()
	defer box.Close()
	box.Send("key", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		box.Wait("key", time.Second)
	}
}
