package arena

// Notifier receives match events after the arena's critical section has
// committed. Delivery is best-effort; implementations must never block
// a command or feed anything back into arena state.
type Notifier interface {
	RegistrationCount(count int)
	MatchStarted(participants int)
	Elimination(eliminated, eliminator string, remaining, placement int)
	Winner(username string, kills int)
	RewardGranted(accountID, placement int, bundle RewardBundle)
}

// MultiNotifier fans events out to several notifiers in order.
type MultiNotifier []Notifier

func (m MultiNotifier) RegistrationCount(count int) {
	for _, n := range m {
		n.RegistrationCount(count)
	}
}

func (m MultiNotifier) MatchStarted(participants int) {
	for _, n := range m {
		n.MatchStarted(participants)
	}
}

func (m MultiNotifier) Elimination(eliminated, eliminator string, remaining, placement int) {
	for _, n := range m {
		n.Elimination(eliminated, eliminator, remaining, placement)
	}
}

func (m MultiNotifier) Winner(username string, kills int) {
	for _, n := range m {
		n.Winner(username, kills)
	}
}

func (m MultiNotifier) RewardGranted(accountID, placement int, bundle RewardBundle) {
	for _, n := range m {
		n.RewardGranted(accountID, placement, bundle)
	}
}
