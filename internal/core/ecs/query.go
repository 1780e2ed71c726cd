package ecs

// Each iterates over live (not doomed) entities that have a component of
// T's kind. The owner list is snapshotted first, so fn may add or remove
// components and queue destruction.
func Each[T Component](w *World, fn func(*Entity, T)) {
	var zero T
	s, ok := w.registry.Lookup(zero.Kind())
	if !ok {
		return
	}
	for _, id := range s.Owners() {
		e, ok := w.entities[id]
		if !ok || e.doomed {
			continue
		}
		if c, ok := Get[T](e); ok {
			fn(e, c)
		}
	}
}

// Each2 iterates over live entities that have both components A and B.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B Component](w *World, fn func(*Entity, A, B)) {
	var za A
	var zb B
	sa, ok := w.registry.Lookup(za.Kind())
	if !ok {
		return
	}
	sb, ok := w.registry.Lookup(zb.Kind())
	if !ok {
		return
	}
	small, large := sa, sb
	if sb.Len() < sa.Len() {
		small, large = sb, sa
	}
	for _, id := range small.Owners() {
		if !large.Has(id) {
			continue
		}
		e, ok := w.entities[id]
		if !ok || e.doomed {
			continue
		}
		a, okA := Get[A](e)
		b, okB := Get[B](e)
		if okA && okB {
			fn(e, a, b)
		}
	}
}
