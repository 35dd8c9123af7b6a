package models

import "time"

type User struct {
	ID               string     `db:"id" json:"id"`
	Username         string     `db:"username" json:"username"`
	IsSubscribed     bool       `db:"is_subscribed" json:"isSubscribed"`
	SubscriptionEnds *time.Time `db:"subscription_ends" json:"subscriptionEnds"`
}

// HasActiveSubscription reports whether the subscription flag is set and the
// window, when bounded, has not ended yet.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if !u.IsSubscribed {
		return false
	}
	return u.SubscriptionEnds == nil || u.SubscriptionEnds.After(now)
}

// SubscriptionLapsed reports whether a recorded window end lies in the past.
func (u *User) SubscriptionLapsed(now time.Time) bool {
	return u.SubscriptionEnds != nil && u.SubscriptionEnds.Before(now)
}

// CanAddTodo applies the free-tier quota: subscribers are unlimited, everyone
// else may own at most limit todos.
func (u *User) CanAddTodo(count, limit int, now time.Time) bool {
	if u.HasActiveSubscription(now) {
		return true
	}
	return count < limit
}

// NextSubscriptionEnd returns the end of a one month window. A lapsed window is
// extended from its own end date, otherwise the window starts now.
func NextSubscriptionEnd(current *time.Time, now time.Time) time.Time {
	if current != nil && current.Before(now) {
		return current.AddDate(0, 1, 0)
	}
	return now.AddDate(0, 1, 0)
}
