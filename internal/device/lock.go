package device

import (
	"fmt"
	"regexp"
	"time"
)

// Lock command names.
const (
	CmdGuestUnlock    = "GUEST_UNLOCK"
	CmdOwnerUnlock    = "OWNER_UNLOCK"
	CmdOwnerPasscode  = "OWNER_PASSCODE"
	CmdAddGuest       = "ADD_GUEST"
	CmdRemoveGuest    = "REMOVE_GUEST"
	CmdLockDuration   = "LOCK_DURATION"
	CmdUnlockDuration = "UNLOCK_DURATION"
	CmdForcedEntry    = "FORCED_ENTRY"
)

// DefaultOwnerPasscode is the owner code of a new lock.
const DefaultOwnerPasscode = "0000"

var passcodePattern = regexp.MustCompile(`^[0-9]{4,8}$`)

// ValidPasscode reports whether code is 4 to 8 digits.
func ValidPasscode(code string) bool {
	return passcodePattern.MatchString(code)
}

// Lock is a door lock with owner and guest passcodes.
//
// The lock bit and the enabled bit are independent: LOCK and UNLOCK toggle
// the lock bit even while the lock is disabled.
type Lock struct {
	core

	locked         bool
	enabled        bool
	lockDuration   time.Duration
	unlockDuration time.Duration
	ownerPasscode  string
	guestPasscodes map[string]struct{}
	linkedAlarmID  string

	commands commandTable
}

// NewLock creates a locked, enabled lock with owner passcode "0000".
func NewLock(id, name string, opts ...Option) *Lock {
	l := &Lock{
		locked:         true,
		enabled:        true,
		ownerPasscode:  DefaultOwnerPasscode,
		guestPasscodes: make(map[string]struct{}),
	}
	l.init(KindLock, id, name, opts)
	l.commands = commandTable{
		CmdLock:        func(Command) bool { return l.lock() },
		CmdUnlock:      func(Command) bool { return l.unlock() },
		CmdArm:         func(Command) bool { return l.arm() },
		CmdDisarm:      func(Command) bool { return l.disarm() },
		CmdGuestUnlock: func(cmd Command) bool { return l.unlockWithGuestPasscode(cmd.Arg) },
		CmdOwnerUnlock: func(cmd Command) bool { return l.unlockWithOwnerPasscode(cmd.Arg) },
		CmdOwnerPasscode: func(cmd Command) bool {
			current, next, _ := cutComma(cmd.Arg)
			return l.changeOwnerPasscode(current, next)
		},
		CmdAddGuest:    func(cmd Command) bool { return l.addGuestPasscode(cmd.Arg) },
		CmdRemoveGuest: func(cmd Command) bool { return l.removeGuestPasscode(cmd.Arg) },
		CmdLockDuration: func(cmd Command) bool {
			d, ok := l.secondsArg(cmd)
			return ok && l.setLockDuration(d)
		},
		CmdUnlockDuration: func(cmd Command) bool {
			d, ok := l.secondsArg(cmd)
			return ok && l.setUnlockDuration(d)
		},
		CmdLinkAlarm: func(cmd Command) bool {
			id, ok := l.idArg(cmd)
			return ok && l.linkAlarm(id)
		},
		CmdForcedEntry: func(Command) bool { return l.forcedEntry() },
	}
	return l
}

// HandleCommand implements Device.
func (l *Lock) HandleCommand(command string) bool {
	return l.handle(l.commands, command)
}

// UnlockWithGuestPasscode unlocks iff the lock is enabled and code is a
// current guest passcode.
func (l *Lock) UnlockWithGuestPasscode(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unlockWithGuestPasscode(code)
}

// UnlockWithOwnerPasscode unlocks iff the lock is enabled and code matches
// the owner passcode.
func (l *Lock) UnlockWithOwnerPasscode(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unlockWithOwnerPasscode(code)
}

// ChangeOwnerPasscode replaces the owner passcode when current matches.
func (l *Lock) ChangeOwnerPasscode(current, next string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.changeOwnerPasscode(current, next)
}

// AddGuestPasscode adds a guest passcode.
func (l *Lock) AddGuestPasscode(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addGuestPasscode(code)
}

// RemoveGuestPasscode removes a guest passcode.
func (l *Lock) RemoveGuestPasscode(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeGuestPasscode(code)
}

// SetLockDuration sets the auto-lock duration. Negative values and values
// above MaxDuration are rejected.
func (l *Lock) SetLockDuration(d time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setLockDuration(d)
}

// SetUnlockDuration sets how long the lock stays open. Negative values and
// values above MaxDuration are rejected.
func (l *Lock) SetUnlockDuration(d time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setUnlockDuration(d)
}

// Locked reports the lock bit.
func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Enabled reports whether the lock accepts passcodes.
func (l *Lock) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// LockDuration returns the auto-lock duration.
func (l *Lock) LockDuration() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lockDuration
}

// UnlockDuration returns the unlock duration.
func (l *Lock) UnlockDuration() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unlockDuration
}

// GuestPasscodeCount returns the number of guest passcodes.
func (l *Lock) GuestPasscodeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.guestPasscodes)
}

// LinkedAlarmID returns the linked alarm, or "".
func (l *Lock) LinkedAlarmID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.linkedAlarmID
}

// Snapshot implements Device. Passcodes are never included.
func (l *Lock) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot(map[string]any{
		"locked":                  l.locked,
		"enabled":                 l.enabled,
		"lock_duration_seconds":   int(l.lockDuration / time.Second),
		"unlock_duration_seconds": int(l.unlockDuration / time.Second),
		"guest_passcode_count":    len(l.guestPasscodes),
		"linked_alarm_id":         l.linkedAlarmID,
	})
}

func (l *Lock) lock() bool {
	l.locked = true
	l.record(EventState, CmdLock, "Door locked")
	return true
}

func (l *Lock) unlock() bool {
	l.locked = false
	l.record(EventState, CmdUnlock, "Door unlocked")
	return true
}

func (l *Lock) arm() bool {
	l.locked = true
	l.enabled = true
	l.record(EventState, CmdArm, "Lock armed")
	return true
}

func (l *Lock) disarm() bool {
	l.enabled = false
	l.record(EventState, CmdDisarm, "Lock disarmed")
	return true
}

func (l *Lock) unlockWithGuestPasscode(code string) bool {
	_, member := l.guestPasscodes[code]
	switch {
	case !l.enabled:
		l.record(EventAlert, CmdGuestUnlock, "Guest unlock attempted while lock is disabled")
		return false
	case !member:
		l.record(EventAlert, CmdGuestUnlock, "Invalid guest passcode entered")
		return false
	}
	l.locked = false
	l.record(EventState, CmdGuestUnlock, "Door unlocked with guest passcode")
	return true
}

func (l *Lock) unlockWithOwnerPasscode(code string) bool {
	switch {
	case !l.enabled:
		l.record(EventAlert, CmdOwnerUnlock, "Owner unlock attempted while lock is disabled")
		return false
	case code != l.ownerPasscode:
		l.record(EventAlert, CmdOwnerUnlock, "Invalid owner passcode entered")
		return false
	}
	l.locked = false
	l.record(EventState, CmdOwnerUnlock, "Door unlocked with owner passcode")
	return true
}

func (l *Lock) changeOwnerPasscode(current, next string) bool {
	switch {
	case current != l.ownerPasscode:
		l.record(EventAlert, CmdOwnerPasscode, "Owner passcode change rejected: current passcode is incorrect")
		return false
	case !ValidPasscode(next):
		l.record(EventRejected, CmdOwnerPasscode, "Owner passcode change rejected: passcode must be 4 to 8 digits")
		return false
	}
	l.ownerPasscode = next
	l.record(EventState, CmdOwnerPasscode, "Owner passcode updated")
	return true
}

func (l *Lock) addGuestPasscode(code string) bool {
	if !ValidPasscode(code) {
		l.record(EventRejected, CmdAddGuest, "Guest passcode rejected: passcode must be 4 to 8 digits")
		return false
	}
	if _, exists := l.guestPasscodes[code]; exists {
		l.record(EventRejected, CmdAddGuest, "Guest passcode already exists")
		return false
	}
	l.guestPasscodes[code] = struct{}{}
	l.record(EventState, CmdAddGuest, fmt.Sprintf("Guest passcode added (%d active)", len(l.guestPasscodes)))
	return true
}

func (l *Lock) removeGuestPasscode(code string) bool {
	if _, exists := l.guestPasscodes[code]; !exists {
		l.record(EventRejected, CmdRemoveGuest, "Guest passcode not found")
		return false
	}
	delete(l.guestPasscodes, code)
	l.record(EventState, CmdRemoveGuest, fmt.Sprintf("Guest passcode removed (%d active)", len(l.guestPasscodes)))
	return true
}

func (l *Lock) setLockDuration(d time.Duration) bool {
	if d < 0 || d > MaxDuration {
		l.record(EventRejected, CmdLockDuration, "Lock duration rejected: out of range")
		return false
	}
	l.lockDuration = d
	l.record(EventState, CmdLockDuration, fmt.Sprintf("Lock duration set to: %d seconds", int(d/time.Second)))
	return true
}

func (l *Lock) setUnlockDuration(d time.Duration) bool {
	if d < 0 || d > MaxDuration {
		l.record(EventRejected, CmdUnlockDuration, "Unlock duration rejected: out of range")
		return false
	}
	l.unlockDuration = d
	l.record(EventState, CmdUnlockDuration, fmt.Sprintf("Unlock duration set to: %d seconds", int(d/time.Second)))
	return true
}

func (l *Lock) linkAlarm(id string) bool {
	l.linkedAlarmID = id
	l.record(EventState, CmdLinkAlarm, "Linked to alarm "+id)
	return true
}

func (l *Lock) forcedEntry() bool {
	var reqs []Request
	if l.linkedAlarmID != "" {
		reqs = append(reqs, Request{DeviceID: l.linkedAlarmID, Command: CmdTriggerCam})
	}
	l.record(EventEmergency, CmdForcedEntry, "Forced entry detected at "+l.name, reqs...)
	return true
}
