// Package dummydb is an in-memory storage used by tests and local demos.
package dummydb

import (
	"sync"

	"github.com/mehy12/edumate/core/activity"
	"github.com/mehy12/edumate/core/enrollment"
)

type (
	DB struct {
		enrollment *enrollmentTable
		activity   *activityTable
	}

	enrollmentTable struct {
		sync.RWMutex
		table    map[string]*enrollment.Enrollment
		sessions map[string][]*enrollment.ClassSession // {enrollmentID: sessions by index}
	}

	activityTable struct {
		sync.RWMutex
		table []activity.Event
	}
)

func Open() *DB {
	return &DB{
		enrollment: &enrollmentTable{
			table:    make(map[string]*enrollment.Enrollment),
			sessions: make(map[string][]*enrollment.ClassSession),
		},
		activity: &activityTable{},
	}
}
