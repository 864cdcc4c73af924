package session

import "github.com/abhisek/pytutor/internal/curriculum"

// Before reports whether a comes earlier in the curriculum than b.
func Before(a, b curriculum.TopicRef) bool {
	if a.Chapter != b.Chapter {
		return a.Chapter < b.Chapter
	}
	return a.Lesson < b.Lesson
}

// Unlocked reports whether a learner whose next lesson is pointer may
// play ref. Everything up to and including the pointer is open.
func Unlocked(pointer, ref curriculum.TopicRef) bool {
	return !Before(pointer, ref)
}

// NextPointer returns the learner's pointer after finishing ref. Lessons
// always move it on; graded reviews only when passed. Replaying an
// earlier lesson never moves it back.
func NextPointer(cur *curriculum.Curriculum, pointer curriculum.TopicRef, plan Plan, passed bool) (curriculum.TopicRef, bool) {
	if plan.Graded() && !passed {
		return pointer, false
	}
	next, ok := cur.Next(plan.Topic.TopicRef)
	if !ok || !Before(pointer, next) {
		return pointer, false
	}
	return next, true
}
