package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"restaurant-admin-service/internal/timefmt"
	"restaurant-admin-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

const (
	PhoneTypeMobile   = "MOBILE"
	PhoneTypeLandline = "LANDLINE"
	PhoneTypeOther    = "OTHER"
)

type branchPhone struct {
	Number      string `json:"number"`
	Type        string `json:"type"`
	HasWhatsApp bool   `json:"hasWhatsapp"`
}

// normalizePhoneType maps an incoming type to the enum, defaulting to
// OTHER. The WhatsApp flag only carries meaning on mobile numbers and
// is cleared everywhere else.
func normalizePhoneType(phoneType string, hasWhatsApp bool) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(phoneType)) {
	case PhoneTypeMobile:
		return PhoneTypeMobile, hasWhatsApp
	case PhoneTypeLandline:
		return PhoneTypeLandline, false
	default:
		return PhoneTypeOther, false
	}
}

// readPhoneList accepts both the object form {number,type,hasWhatsapp}
// and the legacy bare-string form.
func readPhoneList(value any) []branchPhone {
	raw, ok := value.([]any)
	if !ok {
		return nil
	}
	phones := make([]branchPhone, 0, len(raw))
	for _, item := range raw {
		switch entry := item.(type) {
		case map[string]any:
			number := readStringField(entry["number"])
			if number == "" {
				number = readStringField(entry["phone"])
			}
			if number == "" {
				continue
			}
			hasWhatsApp := false
			if v := readOptionalBool(entry["hasWhatsapp"]); v != nil {
				hasWhatsApp = *v
			}
			phoneType, hasWhatsApp := normalizePhoneType(readStringField(entry["type"]), hasWhatsApp)
			phones = append(phones, branchPhone{Number: number, Type: phoneType, HasWhatsApp: hasWhatsApp})
		default:
			number := readStringField(item)
			if number == "" {
				continue
			}
			phoneType, hasWhatsApp := normalizePhoneType("", false)
			phones = append(phones, branchPhone{Number: number, Type: phoneType, HasWhatsApp: hasWhatsApp})
		}
	}
	return phones
}

// storedTimeForDisplay converts a stored clock value back to the
// 12-hour Arabic form the admin screens render. Stored values carry
// the backend clock offset, so it is undone before formatting.
func storedTimeForDisplay(stored string) string {
	if stored == "" {
		return ""
	}
	return timefmt.To12Hour(timefmt.UndoBackendOffset(stored))
}

// displayTimeForStorage normalizes an incoming clock value and applies
// the backend clock offset before it is persisted.
func displayTimeForStorage(value string) string {
	wire := normalizeWireTime(value)
	if wire == "" {
		return ""
	}
	return timefmt.ApplyBackendOffset(wire)
}

type branchRow struct {
	Name           string
	Address        pgtype.Text
	Email          pgtype.Text
	CityID         pgtype.Int8
	CityName       pgtype.Text
	ManagerID      pgtype.Int8
	ManagerName    pgtype.Text
	SupportsShifts bool
	IsActive       bool
	OpensAt        pgtype.Text
	ClosesAt       pgtype.Text
	CreatedAt      pgtype.Timestamptz
}

func (h *Handler) branchPayload(r *http.Request, branchID int64, row branchRow) (map[string]any, error) {
	phones := []branchPhone{}
	phoneRows, err := h.DB.Query(r.Context(),
		`select phone, phone_type, has_whatsapp from branch_phones where branch_id = $1 order by position`,
		branchID)
	if err != nil {
		return nil, err
	}
	defer phoneRows.Close()
	for phoneRows.Next() {
		var phone branchPhone
		if err := phoneRows.Scan(&phone.Number, &phone.Type, &phone.HasWhatsApp); err != nil {
			return nil, err
		}
		phones = append(phones, phone)
	}
	if err := phoneRows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"id":             branchID,
		"name":           row.Name,
		"address":        textOrDefault(row.Address, ""),
		"email":          textOrDefault(row.Email, ""),
		"cityId":         int8Ptr(row.CityID),
		"city":           textPtr(row.CityName),
		"managerId":      int8Ptr(row.ManagerID),
		"managerName":    textPtr(row.ManagerName),
		"supportsShifts": row.SupportsShifts,
		"isActive":       row.IsActive,
		"phones":         phones,
		"opensAt":        storedTimeForDisplay(textOrDefault(row.OpensAt, "")),
		"closesAt":       storedTimeForDisplay(textOrDefault(row.ClosesAt, "")),
		"createdAt":      row.CreatedAt,
	}, nil
}

const branchSelect = `
	select b.id, b.name, b.address, b.email, b.city_id, c.name, b.manager_id, u.name,
		b.supports_shifts, b.is_active, b.opens_at, b.closes_at, b.created_at
	from branches b
	left join cities c on c.id = b.city_id
	left join users u on u.id = b.manager_id
`

func (h *Handler) AdminListBranches(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), branchSelect+` order by b.name`)
	if err != nil {
		h.Logger.Error("failed to list branches", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch branches")
		return
	}
	defer rows.Close()

	branches := []map[string]any{}
	for rows.Next() {
		var id int64
		var row branchRow
		if err := rows.Scan(&id, &row.Name, &row.Address, &row.Email, &row.CityID, &row.CityName,
			&row.ManagerID, &row.ManagerName, &row.SupportsShifts, &row.IsActive,
			&row.OpensAt, &row.ClosesAt, &row.CreatedAt); err != nil {
			h.Logger.Error("failed to scan branch", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch branches")
			return
		}
		payload, err := h.branchPayload(r, id, row)
		if err != nil {
			h.Logger.Error("failed to load branch phones", zapError(err), zap.Int64("branch_id", id))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch branches")
			return
		}
		branches = append(branches, payload)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("branch rows error", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch branches")
		return
	}

	response.Success(w, map[string]any{"branches": branches})
}

func (h *Handler) AdminCreateBranch(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONMap(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	name := readStringField(body["name"])
	if name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Branch name is required")
		return
	}
	address := readStringField(body["address"])
	email := readStringField(body["email"])
	opensAt := displayTimeForStorage(readStringField(body["opensAt"]))
	closesAt := displayTimeForStorage(readStringField(body["closesAt"]))

	var cityID any
	if v, ok := readOptionalInt64(body["cityId"]); ok {
		cityID = v
	}
	var managerID any
	if v, ok := readOptionalInt64(body["managerId"]); ok {
		managerID = v
	}
	supportsShifts := true
	if v := readOptionalBool(body["supportsShifts"]); v != nil {
		supportsShifts = *v
	}

	phones := readPhoneList(body["phones"])

	tx, err := h.DB.Begin(r.Context())
	if err != nil {
		h.Logger.Error("failed to begin branch tx", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create branch")
		return
	}
	defer tx.Rollback(r.Context())

	var branchID int64
	err = tx.QueryRow(r.Context(), `
		insert into branches (name, address, email, city_id, manager_id, supports_shifts, opens_at, closes_at, is_active)
		values ($1, nullif($2, ''), nullif($3, ''), $4, $5, $6, nullif($7, ''), nullif($8, ''), true)
		returning id
	`, name, address, email, cityID, managerID, supportsShifts, opensAt, closesAt).Scan(&branchID)
	if err != nil {
		h.Logger.Error("failed to insert branch", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create branch")
		return
	}

	if err := insertBranchPhones(r, tx, branchID, phones); err != nil {
		h.Logger.Error("failed to insert branch phone", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create branch")
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		h.Logger.Error("failed to commit branch", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create branch")
		return
	}

	h.Logger.Info("branch created", zap.Int64("branch_id", branchID), zap.String("name", name))
	response.Success(w, map[string]any{"id": branchID})
}

func (h *Handler) AdminUpdateBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := readPathInt64(r, "branchId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
		return
	}

	body, err := decodeJSONMap(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	setClauses := []string{}
	args := []any{}
	addSet := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(len(args)))
	}

	if name := readOptionalString(body["name"]); name != nil {
		addSet("name", *name)
	}
	if _, ok := body["address"]; ok {
		addSet("address", nullable(readStringField(body["address"])))
	}
	if _, ok := body["email"]; ok {
		addSet("email", nullable(readStringField(body["email"])))
	}
	if _, ok := body["cityId"]; ok {
		if v, valid := readOptionalInt64(body["cityId"]); valid {
			addSet("city_id", v)
		} else {
			addSet("city_id", nil)
		}
	}
	if _, ok := body["managerId"]; ok {
		if v, valid := readOptionalInt64(body["managerId"]); valid {
			addSet("manager_id", v)
		} else {
			addSet("manager_id", nil)
		}
	}
	if v := readOptionalBool(body["supportsShifts"]); v != nil {
		addSet("supports_shifts", *v)
	}
	if _, ok := body["opensAt"]; ok {
		addSet("opens_at", nullable(displayTimeForStorage(readStringField(body["opensAt"]))))
	}
	if _, ok := body["closesAt"]; ok {
		addSet("closes_at", nullable(displayTimeForStorage(readStringField(body["closesAt"]))))
	}
	if active := readOptionalBool(body["isActive"]); active != nil {
		addSet("is_active", *active)
	}

	if len(setClauses) == 0 && body["phones"] == nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "No fields to update")
		return
	}

	tx, err := h.DB.Begin(r.Context())
	if err != nil {
		h.Logger.Error("failed to begin branch update tx", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update branch")
		return
	}
	defer tx.Rollback(r.Context())

	if len(setClauses) > 0 {
		args = append(args, branchID)
		query := "update branches set " + strings.Join(setClauses, ", ") +
			", updated_at = now() where id = $" + strconv.Itoa(len(args))
		tag, err := tx.Exec(r.Context(), query, args...)
		if err != nil {
			h.Logger.Error("failed to update branch", zapError(err), zap.Int64("branch_id", branchID))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update branch")
			return
		}
		if tag.RowsAffected() == 0 {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Branch not found")
			return
		}
	}

	if rawPhones, ok := body["phones"]; ok && rawPhones != nil {
		if _, err := tx.Exec(r.Context(), `delete from branch_phones where branch_id = $1`, branchID); err != nil {
			h.Logger.Error("failed to clear branch phones", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update branch")
			return
		}
		if err := insertBranchPhones(r, tx, branchID, readPhoneList(rawPhones)); err != nil {
			h.Logger.Error("failed to insert branch phone", zapError(err))
			response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update branch")
			return
		}
	}

	if err := tx.Commit(r.Context()); err != nil {
		h.Logger.Error("failed to commit branch update", zapError(err))
		response.Error(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update branch")
		return
	}

	response.Success(w, map[string]any{"id": branchID})
}

func (h *Handler) AdminToggleBranch(w http.ResponseWriter, r *http.Request) {
	branchID, err := readPathInt64(r, "branchId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid branch id")
		return
	}

	var isActive bool
	err = h.DB.QueryRow(r.Context(), `
		update branches set is_active = not is_active, updated_at = now()
		where id = $1
		returning is_active
	`, branchID).Scan(&isActive)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Branch not found")
		return
	}

	response.Success(w, map[string]any{"id": branchID, "isActive": isActive})
}

func insertBranchPhones(r *http.Request, tx pgx.Tx, branchID int64, phones []branchPhone) error {
	for position, phone := range phones {
		_, err := tx.Exec(r.Context(), `
			insert into branch_phones (branch_id, phone, phone_type, has_whatsapp, position)
			values ($1, $2, $3, $4, $5)
		`, branchID, phone.Number, phone.Type, phone.HasWhatsApp, position)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
