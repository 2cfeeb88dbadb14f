// Package aggregate computes time-windowed revenue/cost rollups for projects,
// employees, departments and clients. It is a pure reader: every method fetches
// config once, bulk-fetches the rows it needs in a constant number of queries,
// and folds them in memory. No per-entity or per-month queries, ever.
package aggregate

import (
	"profitdash-backend/internal/finance"
	"profitdash-backend/internal/models"
	"profitdash-backend/internal/sysconfig"

	"gorm.io/gorm"
)

type Engine struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Bucket accumulates one entity's numbers for one month. Accumulation keeps
// full float precision; rounding happens only at the response boundary.
type Bucket struct {
	Revenue       float64
	Cost          float64
	BillableHours float64
	TotalHours    float64
}

func (b *Bucket) Profit() float64 {
	return finance.Profit(b.Revenue, b.Cost)
}

func (b *Bucket) MarginPercent() float64 {
	return finance.MarginPercent(b.Revenue, b.Cost)
}

func (b *Bucket) UtilizationPercent() float64 {
	return finance.UtilizationPercent(b.BillableHours, b.TotalHours)
}

// bucketAt returns the bucket for (month, id), creating it on first touch.
func bucketAt(buckets map[string]map[uint]*Bucket, month string, id uint) *Bucket {
	byID, ok := buckets[month]
	if !ok {
		byID = make(map[uint]*Bucket)
		buckets[month] = byID
	}
	b, ok := byID[id]
	if !ok {
		b = &Bucket{}
		byID[id] = b
	}
	return b
}

// costedHours is the flat shape of the bulk timesheet fetch: logged hours
// joined with the CTC and department of the employee who logged them. The
// join is raw, so soft-deleted employees still contribute to history.
type costedHours struct {
	ProjectID        uint
	EmployeeID       uint
	DepartmentID     uint
	Month            string
	BillableHours    float64
	NonBillableHours float64
	AnnualCTC        float64
}

// ProjectRollup maps month -> project id -> bucket, plus month totals and the
// window-wide revenue breakdowns by the snapshot vertical/project type kept on
// each revenue row.
type ProjectRollup struct {
	Config   sysconfig.CostConfig
	Months   []string
	Projects map[uint]models.Project
	Buckets  map[string]map[uint]*Bucket
	Totals   map[string]*Bucket

	RevenueByVertical    map[string]float64
	RevenueByProjectType map[string]float64
}

// ProjectTotals rolls up revenue and derived cost per project per month.
// Every ScopeFilter field narrows the project set: employee-side fields
// restrict to projects those employees logged on. Exactly four queries
// regardless of scope or window size: config, projects, revenues, timesheets.
func (e *Engine) ProjectTotals(months []string, scope ScopeFilter) (*ProjectRollup, error) {
	cfg := sysconfig.Resolve(e.db)

	q := e.db.Model(&models.Project{})
	if len(scope.ProjectIDs) > 0 {
		q = q.Where("id IN ?", scope.ProjectIDs)
	}
	if scope.DeliveryManagerID != nil {
		q = q.Where("delivery_manager_id = ?", *scope.DeliveryManagerID)
	}
	// employee-side restrictions translate to "projects those employees
	// logged hours on"; without this an own-scoped caller would see every
	// project's financials
	if scope.restrictsEmployees() {
		sub := e.db.Table("timesheets").
			Select("timesheets.project_id").
			Joins("JOIN employees ON employees.id = timesheets.employee_id")
		if len(scope.EmployeeIDs) > 0 {
			sub = sub.Where("timesheets.employee_id IN ?", scope.EmployeeIDs)
		}
		if scope.DepartmentID != nil {
			sub = sub.Where("employees.department_id = ?", *scope.DepartmentID)
		}
		q = q.Where("id IN (?)", sub)
	}
	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}

	rollup := &ProjectRollup{
		Config:               cfg,
		Months:               months,
		Projects:             make(map[uint]models.Project, len(projects)),
		Buckets:              make(map[string]map[uint]*Bucket, len(months)),
		Totals:               make(map[string]*Bucket, len(months)),
		RevenueByVertical:    make(map[string]float64),
		RevenueByProjectType: make(map[string]float64),
	}
	projectIDs := make([]uint, 0, len(projects))
	for _, p := range projects {
		rollup.Projects[p.ID] = p
		projectIDs = append(projectIDs, p.ID)
	}
	for _, m := range months {
		rollup.Buckets[m] = make(map[uint]*Bucket)
		rollup.Totals[m] = &Bucket{}
	}

	// Infrastructure vendor cost is a fixed monthly cost, seeded into EVERY
	// requested month's bucket. Over a multi-month window this repeats the
	// cost once per month rather than amortizing it across the window;
	// intentional, matches how single-month views are built.
	for _, p := range projects {
		if p.ProjectType != models.ProjectTypeInfrastructure || p.InfraVendorCost == 0 {
			continue
		}
		for _, m := range months {
			bucketAt(rollup.Buckets, m, p.ID).Cost += p.InfraVendorCost
			rollup.Totals[m].Cost += p.InfraVendorCost
		}
	}

	if len(projectIDs) == 0 {
		return rollup, nil
	}

	var revenues []models.Revenue
	err := e.db.Where("month IN ? AND project_id IN ?", months, projectIDs).Find(&revenues).Error
	if err != nil {
		return nil, err
	}
	for _, r := range revenues {
		bucketAt(rollup.Buckets, r.Month, r.ProjectID).Revenue += r.InvoiceAmount
		rollup.Totals[r.Month].Revenue += r.InvoiceAmount
		if r.Vertical != "" {
			rollup.RevenueByVertical[r.Vertical] += r.InvoiceAmount
		}
		if r.ProjectType != "" {
			rollup.RevenueByProjectType[string(r.ProjectType)] += r.InvoiceAmount
		}
	}

	var hours []costedHours
	err = e.db.Table("timesheets").
		Select("timesheets.project_id, timesheets.employee_id, timesheets.month, timesheets.billable_hours, timesheets.non_billable_hours, employees.annual_ctc, employees.department_id").
		Joins("JOIN employees ON employees.id = timesheets.employee_id").
		Where("timesheets.month IN ? AND timesheets.project_id IN ?", months, projectIDs).
		Scan(&hours).Error
	if err != nil {
		return nil, err
	}
	for _, h := range hours {
		rate, err := finance.CostPerHour(h.AnnualCTC, cfg.OverheadCostPerYear, cfg.StandardMonthlyHours)
		if err != nil {
			return nil, err
		}
		total := h.BillableHours + h.NonBillableHours
		b := bucketAt(rollup.Buckets, h.Month, h.ProjectID)
		b.Cost += total * rate
		b.BillableHours += h.BillableHours
		b.TotalHours += total
		rollup.Totals[h.Month].Cost += total * rate
		rollup.Totals[h.Month].BillableHours += h.BillableHours
		rollup.Totals[h.Month].TotalHours += total
	}

	return rollup, nil
}

// EmployeeRollup maps month -> employee id -> bucket. Employee revenue is the
// derived T&M contribution (billable hours times project billing rate); fixed
// and infrastructure billing never attributes revenue to individuals.
type EmployeeRollup struct {
	Config    sysconfig.CostConfig
	Months    []string
	Employees map[uint]models.Employee
	Buckets   map[string]map[uint]*Bucket
	Totals    map[string]*Bucket
}

// employeeHours is the flat shape of the employee-side timesheet fetch:
// hours joined with the billing terms of the project they were logged on.
type employeeHours struct {
	EmployeeID       uint
	Month            string
	BillableHours    float64
	NonBillableHours float64
	BillingRate      float64
	ProjectType      models.ProjectType
}

// EmployeeTotals rolls up cost, derived revenue and logged hours per employee
// per month. Every ScopeFilter field narrows the employee set: project-side
// fields restrict to employees who logged on those projects. Soft-deleted
// employees are included so historical windows stay complete. Three queries:
// config, employees, timesheets.
func (e *Engine) EmployeeTotals(months []string, scope ScopeFilter) (*EmployeeRollup, error) {
	cfg := sysconfig.Resolve(e.db)

	q := e.db.Unscoped().Model(&models.Employee{})
	if len(scope.EmployeeIDs) > 0 {
		q = q.Where("id IN ?", scope.EmployeeIDs)
	}
	if scope.DepartmentID != nil {
		q = q.Where("department_id = ?", *scope.DepartmentID)
	}
	// project-side restrictions translate to "employees who logged hours on
	// those projects"; a manager-scoped caller must not see the whole company
	if scope.restrictsProjects() {
		sub := e.db.Table("timesheets").
			Select("timesheets.employee_id").
			Joins("JOIN projects ON projects.id = timesheets.project_id")
		if len(scope.ProjectIDs) > 0 {
			sub = sub.Where("timesheets.project_id IN ?", scope.ProjectIDs)
		}
		if scope.DeliveryManagerID != nil {
			sub = sub.Where("projects.delivery_manager_id = ?", *scope.DeliveryManagerID)
		}
		q = q.Where("id IN (?)", sub)
	}
	var employees []models.Employee
	if err := q.Find(&employees).Error; err != nil {
		return nil, err
	}

	rollup := &EmployeeRollup{
		Config:    cfg,
		Months:    months,
		Employees: make(map[uint]models.Employee, len(employees)),
		Buckets:   make(map[string]map[uint]*Bucket, len(months)),
		Totals:    make(map[string]*Bucket, len(months)),
	}
	employeeIDs := make([]uint, 0, len(employees))
	ctcByID := make(map[uint]float64, len(employees))
	for _, emp := range employees {
		rollup.Employees[emp.ID] = emp
		employeeIDs = append(employeeIDs, emp.ID)
		ctcByID[emp.ID] = emp.AnnualCTC
	}
	for _, m := range months {
		rollup.Buckets[m] = make(map[uint]*Bucket)
		rollup.Totals[m] = &Bucket{}
	}

	if len(employeeIDs) == 0 {
		return rollup, nil
	}

	var hours []employeeHours
	err := e.db.Table("timesheets").
		Select("timesheets.employee_id, timesheets.month, timesheets.billable_hours, timesheets.non_billable_hours, projects.billing_rate, projects.project_type").
		Joins("JOIN projects ON projects.id = timesheets.project_id").
		Where("timesheets.month IN ? AND timesheets.employee_id IN ?", months, employeeIDs).
		Scan(&hours).Error
	if err != nil {
		return nil, err
	}
	for _, h := range hours {
		rate, err := finance.CostPerHour(ctcByID[h.EmployeeID], cfg.OverheadCostPerYear, cfg.StandardMonthlyHours)
		if err != nil {
			return nil, err
		}
		total := h.BillableHours + h.NonBillableHours
		b := bucketAt(rollup.Buckets, h.Month, h.EmployeeID)
		b.Cost += total * rate
		b.BillableHours += h.BillableHours
		b.TotalHours += total
		rollup.Totals[h.Month].Cost += total * rate
		rollup.Totals[h.Month].BillableHours += h.BillableHours
		rollup.Totals[h.Month].TotalHours += total

		if h.ProjectType == models.ProjectTypeTM {
			rev := finance.TMRevenue(h.BillableHours, h.BillingRate)
			b.Revenue += rev
			rollup.Totals[h.Month].Revenue += rev
		}
	}

	return rollup, nil
}

// DepartmentRollup maps month -> department id -> bucket. Department buckets
// carry CAPACITY in TotalHours: headcount times standard monthly hours, not
// the sum of logged hours. Department utilization is billable/capacity, a
// deliberately different base from the per-employee logged-hours formula.
type DepartmentRollup struct {
	Config      sysconfig.CostConfig
	Months      []string
	Departments map[uint]models.Department
	Headcount   map[uint]int
	Buckets     map[string]map[uint]*Bucket
	Totals      map[string]*Bucket
}

// DepartmentTotals folds the employee rollup by department and swaps the
// utilization denominator to capacity.
func (e *Engine) DepartmentTotals(months []string, scope ScopeFilter) (*DepartmentRollup, error) {
	empRollup, err := e.EmployeeTotals(months, scope)
	if err != nil {
		return nil, err
	}
	cfg := empRollup.Config

	var departments []models.Department
	if err := e.db.Find(&departments).Error; err != nil {
		return nil, err
	}

	rollup := &DepartmentRollup{
		Config:      cfg,
		Months:      months,
		Departments: make(map[uint]models.Department, len(departments)),
		Headcount:   make(map[uint]int),
		Buckets:     make(map[string]map[uint]*Bucket, len(months)),
		Totals:      make(map[string]*Bucket, len(months)),
	}
	for _, d := range departments {
		rollup.Departments[d.ID] = d
	}
	// capacity counts active heads only; departed employees keep their
	// logged costs in the buckets but stop inflating the denominator
	for _, emp := range empRollup.Employees {
		if emp.DeletedAt.Valid {
			continue
		}
		rollup.Headcount[emp.DepartmentID]++
	}
	for _, m := range months {
		rollup.Buckets[m] = make(map[uint]*Bucket)
		rollup.Totals[m] = &Bucket{}
	}

	deptOf := func(empID uint) uint {
		return empRollup.Employees[empID].DepartmentID
	}

	for _, m := range months {
		for empID, src := range empRollup.Buckets[m] {
			b := bucketAt(rollup.Buckets, m, deptOf(empID))
			b.Revenue += src.Revenue
			b.Cost += src.Cost
			b.BillableHours += src.BillableHours
			rollup.Totals[m].Revenue += src.Revenue
			rollup.Totals[m].Cost += src.Cost
			rollup.Totals[m].BillableHours += src.BillableHours
		}
		// capacity denominators, seeded even for departments with no logged hours
		for deptID, count := range rollup.Headcount {
			capacity := float64(count) * cfg.StandardMonthlyHours
			bucketAt(rollup.Buckets, m, deptID).TotalHours = capacity
			rollup.Totals[m].TotalHours += capacity
		}
	}

	return rollup, nil
}

// ClientRollup maps month -> client id -> bucket. Projects without a client
// fold into id 0 ("unassigned").
type ClientRollup struct {
	Config  sysconfig.CostConfig
	Months  []string
	Clients map[uint]models.Client
	Buckets map[string]map[uint]*Bucket
	Totals  map[string]*Bucket
}

// ClientTotals folds the project rollup by owning client.
func (e *Engine) ClientTotals(months []string, scope ScopeFilter) (*ClientRollup, error) {
	projRollup, err := e.ProjectTotals(months, scope)
	if err != nil {
		return nil, err
	}

	var clients []models.Client
	if err := e.db.Find(&clients).Error; err != nil {
		return nil, err
	}

	rollup := &ClientRollup{
		Config:  projRollup.Config,
		Months:  months,
		Clients: make(map[uint]models.Client, len(clients)),
		Buckets: make(map[string]map[uint]*Bucket, len(months)),
		Totals:  projRollup.Totals,
	}
	for _, cl := range clients {
		rollup.Clients[cl.ID] = cl
	}
	for _, m := range months {
		rollup.Buckets[m] = make(map[uint]*Bucket)
	}

	for _, m := range months {
		for projID, src := range projRollup.Buckets[m] {
			var clientID uint
			if p, ok := projRollup.Projects[projID]; ok && p.ClientID != nil {
				clientID = *p.ClientID
			}
			b := bucketAt(rollup.Buckets, m, clientID)
			b.Revenue += src.Revenue
			b.Cost += src.Cost
			b.BillableHours += src.BillableHours
			b.TotalHours += src.TotalHours
		}
	}

	return rollup, nil
}
