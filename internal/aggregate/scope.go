package aggregate

// ScopeFilter is the already-resolved entity restriction a caller supplies.
// The engine never inspects roles; authorization policy lives entirely with
// the caller, which boils its decision down to these id sets. A zero value
// means unrestricted.
type ScopeFilter struct {
	ProjectIDs        []uint
	EmployeeIDs       []uint
	DepartmentID      *uint
	DeliveryManagerID *uint
}

func (s ScopeFilter) restrictsProjects() bool {
	return len(s.ProjectIDs) > 0 || s.DeliveryManagerID != nil
}

func (s ScopeFilter) restrictsEmployees() bool {
	return len(s.EmployeeIDs) > 0 || s.DepartmentID != nil
}
