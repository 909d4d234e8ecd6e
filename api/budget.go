package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/budget-ledger/budget"
	"github.com/warp/budget-ledger/ledger"
)

// =============================================================================
// BUDGET ITEM HANDLERS - {kind} is "bills" or "expenses"
// =============================================================================

func budgetKind(w http.ResponseWriter, r *http.Request) (budget.Kind, bool) {
	kind, ok := budget.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeJSON(w, http.StatusNotFound, Result{Error: "Unknown budget kind"})
	}
	return kind, ok
}

func itemInput(r *http.Request) (budget.ItemInput, error) {
	amount, err := formAmount(r, "amount")
	if err != nil {
		return budget.ItemInput{}, err
	}
	rec, err := recurrenceInput(r)
	if err != nil {
		return budget.ItemInput{}, err
	}
	return budget.ItemInput{
		Amount:      amount,
		Description: r.FormValue("description"),
		CategoryID:  ledger.CategoryID(r.FormValue("categoryId")),
		Recurrence:  rec,
	}, nil
}

// recurrenceInput reads recurrenceType plus the field that goes with it.
// weeklyDays may be repeated form values or a JSON array; dayOfMonth may be
// a number or "last".
func recurrenceInput(r *http.Request) (budget.Recurrence, error) {
	rec := budget.Recurrence{Type: budget.RecurrenceType(strings.TrimSpace(r.FormValue("recurrenceType")))}

	days, err := weeklyDays(r.Form["weeklyDays"])
	if err != nil {
		return rec, err
	}
	rec.WeeklyDays = days

	switch v := strings.TrimSpace(r.FormValue("dayOfMonth")); v {
	case "":
	case "last", strconv.Itoa(budget.LastDay):
		rec.DayOfMonth = budget.LastDay
	default:
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, &ledger.ValidationError{Field: "dayOfMonth", Message: "Day of month must be between 1 and 31, or last"}
		}
		rec.DayOfMonth = n
	}

	if v := strings.TrimSpace(r.FormValue("yearlyDate")); v != "" {
		md, err := budget.ParseMonthDay(v)
		if err != nil {
			return rec, &ledger.ValidationError{Field: "yearlyDate", Message: "Yearly date must be in MM-DD format"}
		}
		rec.YearlyDate = md
	}
	return rec, nil
}

func weeklyDays(values []string) ([]time.Weekday, error) {
	bad := &ledger.ValidationError{Field: "weeklyDays", Message: "Weekly days must be between Sunday (0) and Saturday (6)"}
	var out []time.Weekday
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			var days []int
			if err := json.Unmarshal([]byte(v), &days); err != nil {
				return nil, bad
			}
			for _, d := range days {
				out = append(out, time.Weekday(d))
			}
			continue
		}
		for _, part := range strings.Split(v, ",") {
			d, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, bad
			}
			out = append(out, time.Weekday(d))
		}
	}
	return out, nil
}

// ListBudgetItems returns the workspace's bills or expenses.
// GET /api/budget/{kind}
func (h *Handler) ListBudgetItems(w http.ResponseWriter, r *http.Request) {
	kind, ok := budgetKind(w, r)
	if !ok {
		return
	}
	c := h.caller(r)
	wsID, err := h.workspace(r, c)
	if err != nil {
		h.writeError(w, r, "Failed to load "+kind.Plural(), err)
		return
	}
	items, err := h.Budget.ListItems(r.Context(), c, wsID, kind)
	if err != nil {
		h.writeError(w, r, "Failed to load "+kind.Plural(), err)
		return
	}
	writeResult(w, http.StatusOK, mapSlice(items, toBudgetItemDTO))
}

// CreateBudgetItem adds a bill or expense.
// POST /api/budget/{kind}
func (h *Handler) CreateBudgetItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := budgetKind(w, r)
	if !ok {
		return
	}
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	fallback := "Failed to create " + string(kind)
	c := h.caller(r)
	in, err := itemInput(r)
	if err != nil {
		h.writeError(w, r, fallback, err)
		return
	}
	if in.WorkspaceID, err = h.workspace(r, c); err != nil {
		h.writeError(w, r, fallback, err)
		return
	}
	item, err := h.Budget.CreateItem(r.Context(), c, kind, in)
	if err != nil {
		h.writeError(w, r, fallback, err)
		return
	}
	writeResult(w, http.StatusCreated, toBudgetItemDTO(*item))
}

// UpdateBudgetItem replaces a bill or expense.
// PUT /api/budget/{kind}/{id}
func (h *Handler) UpdateBudgetItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := budgetKind(w, r)
	if !ok {
		return
	}
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	fallback := "Failed to update " + string(kind)
	in, err := itemInput(r)
	if err != nil {
		h.writeError(w, r, fallback, err)
		return
	}
	id := ledger.BudgetItemID(chi.URLParam(r, "id"))
	item, err := h.Budget.UpdateItem(r.Context(), h.caller(r), kind, id, in)
	if err != nil {
		h.writeError(w, r, fallback, err)
		return
	}
	writeResult(w, http.StatusOK, toBudgetItemDTO(*item))
}

// DeleteBudgetItem removes a bill or expense.
// DELETE /api/budget/{kind}/{id}
func (h *Handler) DeleteBudgetItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := budgetKind(w, r)
	if !ok {
		return
	}
	id := ledger.BudgetItemID(chi.URLParam(r, "id"))
	if err := h.Budget.DeleteItem(r.Context(), h.caller(r), kind, id); err != nil {
		h.writeError(w, r, "Failed to delete "+string(kind), err)
		return
	}
	writeResult(w, http.StatusOK, nil)
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

func categoryInput(r *http.Request) budget.CategoryInput {
	return budget.CategoryInput{Name: r.FormValue("name"), Color: r.FormValue("color")}
}

// ListCategories returns the workspace's categories by name.
// GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	c := h.caller(r)
	wsID, err := h.workspace(r, c)
	if err != nil {
		h.writeError(w, r, "Failed to load categories", err)
		return
	}
	cats, err := h.Budget.ListCategories(r.Context(), c, wsID)
	if err != nil {
		h.writeError(w, r, "Failed to load categories", err)
		return
	}
	writeResult(w, http.StatusOK, mapSlice(cats, toCategoryDTO))
}

// CreateCategory adds a category.
// POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	c := h.caller(r)
	in := categoryInput(r)
	var err error
	if in.WorkspaceID, err = h.workspace(r, c); err != nil {
		h.writeError(w, r, "Failed to create category", err)
		return
	}
	cat, err := h.Budget.CreateCategory(r.Context(), c, in)
	if err != nil {
		h.writeError(w, r, "Failed to create category", err)
		return
	}
	writeResult(w, http.StatusCreated, toCategoryDTO(*cat))
}

// UpdateCategory renames or recolors a category.
// PUT /api/categories/{id}
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	id := ledger.CategoryID(chi.URLParam(r, "id"))
	cat, err := h.Budget.UpdateCategory(r.Context(), h.caller(r), id, categoryInput(r))
	if err != nil {
		h.writeError(w, r, "Failed to update category", err)
		return
	}
	writeResult(w, http.StatusOK, toCategoryDTO(*cat))
}

// DeleteCategory removes a category.
// DELETE /api/categories/{id}
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := ledger.CategoryID(chi.URLParam(r, "id"))
	if err := h.Budget.DeleteCategory(r.Context(), h.caller(r), id); err != nil {
		h.writeError(w, r, "Failed to delete category", err)
		return
	}
	writeResult(w, http.StatusOK, nil)
}

// =============================================================================
// WORKSPACE HANDLERS
// =============================================================================

// CreateWorkspace creates a workspace owned by the caller.
// POST /api/workspaces
func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		badForm(w)
		return
	}
	ws, err := h.Engine.CreateWorkspace(r.Context(), h.caller(r), r.FormValue("workspaceName"))
	if err != nil {
		h.writeError(w, r, "Failed to create workspace", err)
		return
	}
	writeResult(w, http.StatusCreated, toWorkspaceDTO(ws))
}

// CurrentWorkspace returns the caller's default workspace.
// GET /api/workspaces/current
func (h *Handler) CurrentWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.Engine.WorkspaceFor(r.Context(), h.caller(r))
	if err != nil {
		h.writeError(w, r, "Failed to load workspace", err)
		return
	}
	writeResult(w, http.StatusOK, toWorkspaceDTO(ws))
}
