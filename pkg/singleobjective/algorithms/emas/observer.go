package emas

// Observer is notified after every completed iteration.
type Observer interface {
	Update(stats IterationStats)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(stats IterationStats)

func (f ObserverFunc) Update(stats IterationStats) {
	f(stats)
}
