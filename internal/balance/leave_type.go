package balance

import (
	balanceerrors "leavedesk/internal/balance/errors"
)

// LeaveType is the closed set of leave categories. Each type maps to a typed
// column accessor instead of interpolating the type name into a field lookup,
// so an unknown type fails at parse time rather than at mutation time.
type LeaveType string

const (
	Casual   LeaveType = "casual"
	Medical  LeaveType = "medical"
	Earned   LeaveType = "earned"
	Academic LeaveType = "academic"
)

var columnByType = map[LeaveType]string{
	Casual:   "casual_leave",
	Medical:  "medical_leave",
	Earned:   "earned_leave",
	Academic: "academic_leave",
}

var allotmentByType = map[LeaveType]int{
	Casual:   12,
	Medical:  10,
	Earned:   15,
	Academic: 15,
}

func ParseLeaveType(v string) (LeaveType, error) {
	lt := LeaveType(v)
	if _, ok := columnByType[lt]; !ok {
		return "", balanceerrors.ErrUnknownLeaveType
	}
	return lt, nil
}

// Column returns the users-table column holding this type's counter.
func (lt LeaveType) Column() string {
	return columnByType[lt]
}

// Allotment returns the initial number of days granted for this type.
func (lt LeaveType) Allotment() int {
	return allotmentByType[lt]
}

func (lt LeaveType) String() string {
	return string(lt)
}

func AllTypes() []LeaveType {
	return []LeaveType{Casual, Medical, Earned, Academic}
}

// Balances is a snapshot of one user's four counters.
type Balances struct {
	Casual   int
	Medical  int
	Earned   int
	Academic int
}

func (b Balances) For(lt LeaveType) int {
	switch lt {
	case Casual:
		return b.Casual
	case Medical:
		return b.Medical
	case Earned:
		return b.Earned
	case Academic:
		return b.Academic
	}
	return 0
}

// Defaults returns the initial allotment for every type.
func Defaults() Balances {
	return Balances{
		Casual:   Casual.Allotment(),
		Medical:  Medical.Allotment(),
		Earned:   Earned.Allotment(),
		Academic: Academic.Allotment(),
	}
}
