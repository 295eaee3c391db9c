package stream

// Scoping rules for event fan-out. Each rule is a standalone predicate so the
// visibility policy can be tested without a live room.

// SeesDriverPresence reports whether a subscriber receives driver:update and
// driver:remove events. Driver presence is public inside a room.
func SeesDriverPresence(sub *Subscriber) bool {
	return sub.Role == RoleDriver || sub.Role == RoleRider
}

// SeesRequest reports whether a subscriber receives request:new and
// request:update events for a request: the owning rider and the targeted
// driver only.
func SeesRequest(sub *Subscriber, riderID, targetDriverID string) bool {
	switch sub.Role {
	case RoleRider:
		return sub.DeviceID == riderID
	case RoleDriver:
		return targetDriverID != "" && sub.DeviceID == targetDriverID
	}
	return false
}

// SeesRequestRemove reports whether a subscriber receives a request:remove
// event. A removal with no target driver recorded is still shown to every
// driver so an already-declined copy disappears everywhere.
func SeesRequestRemove(sub *Subscriber, riderID, targetDriverID string) bool {
	switch sub.Role {
	case RoleRider:
		return sub.DeviceID == riderID
	case RoleDriver:
		return targetDriverID == "" || sub.DeviceID == targetDriverID
	}
	return false
}

// IsAssignedRider reports whether a subscriber is a rider currently assigned
// to the given driver, per the room's assignment index. Assigned riders
// receive their driver's position updates even when the room-wide broadcast
// is throttled.
func IsAssignedRider(sub *Subscriber, driverID string, assignedDriverOf func(riderID string) string) bool {
	return sub.Role == RoleRider && driverID != "" && assignedDriverOf(sub.DeviceID) == driverID
}
