package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	appledger "github.com/jhoicas/retail-ledger/internal/application/ledger"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	domledger "github.com/jhoicas/retail-ledger/internal/domain/ledger"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// LedgerHandler cuentas de clientes, eventos y estados de cuenta (protegido).
type LedgerHandler struct {
	uc  *appledger.UseCase
	log *logger.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *appledger.UseCase, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{uc: uc, log: log}
}

// CreateAccount godoc
// @Summary      Crear cuenta de cliente
// @Tags         accounts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAccountRequest  true  "name, phone, opening_balance (con signo)"
// @Success      201   {object}  dto.AccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/accounts [post]
func (h *LedgerHandler) CreateAccount(c *fiber.Ctx) error {
	var in dto.CreateAccountRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	acc, err := h.uc.CreateAccount(c.UserContext(), appledger.CreateAccountInput{
		Name:           in.Name,
		Phone:          in.Phone,
		OpeningBalance: in.OpeningBalance,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAccountResponse(acc))
}

// Balances godoc
// @Summary      Saldos de todas las cuentas
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx. 200, por defecto 50"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.AccountBalancesResponse
// @Router       /api/accounts/balances [get]
func (h *LedgerHandler) Balances(c *fiber.Ctx) error {
	page, ok, err := pageFrom(c)
	if !ok {
		return err
	}
	items, err := h.uc.Balances(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AccountBalancesResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// Statement godoc
// @Summary      Estado de cuenta con saldo corrido
// @Tags         accounts
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID de la cuenta"
// @Param        from  query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to    query  string  false  "RFC3339 o YYYY-MM-DD (inclusivo)"
// @Success      200  {object}  ledger.Statement
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/statement [get]
func (h *LedgerHandler) Statement(c *fiber.Ctx) error {
	period, ok, err := periodFrom(c)
	if !ok {
		return err
	}
	st, err := h.uc.BuildStatement(c.UserContext(), c.Params("id"), period)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(st)
}

// StatementPDF godoc
// @Summary      Estado de cuenta en PDF
// @Tags         accounts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id      path   string  true   "ID de la cuenta"
// @Param        locale  query  string  false  "es | en (por defecto Accept-Language)"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/accounts/{id}/statement.pdf [get]
func (h *LedgerHandler) StatementPDF(c *fiber.Ctx) error {
	period, ok, err := periodFrom(c)
	if !ok {
		return err
	}
	locale := c.Query("locale")
	if locale == "" {
		locale = c.Get(fiber.HeaderAcceptLanguage)
	}
	doc, err := h.uc.StatementPDF(c.UserContext(), c.Params("id"), period, locale)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="estado-de-cuenta-`+c.Params("id")+`.pdf"`)
	return c.Send(doc)
}

// RecordEvent godoc
// @Summary      Registrar venta a crédito o recibo de caja
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordEventRequest  true  "account_id, kind (sale|receipt), amount > 0"
// @Success      201   {object}  dto.LedgerEventResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ledger/events [post]
func (h *LedgerHandler) RecordEvent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordEventRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	ev, err := h.uc.RecordEvent(c.UserContext(), appledger.RecordEventInput{
		AccountID: in.AccountID,
		Kind:      entity.LedgerEventKind(in.Kind),
		Amount:    in.Amount,
		Date:      in.Date,
		Reference: in.Reference,
		UserID:    userID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToLedgerEventResponse(ev))
}

// VoidEvent godoc
// @Summary      Anular un evento con su reversa
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del evento"
// @Param        body  body  dto.VoidEventRequest   false "motivo"
// @Success      201   {object}  dto.LedgerEventResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/events/{id}/void [post]
func (h *LedgerHandler) VoidEvent(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.VoidEventRequest
	if len(c.Body()) > 0 {
		if ok, err := bind(c, &in); !ok {
			return err
		}
	}
	ev, err := h.uc.VoidEvent(c.UserContext(), c.Params("id"), in.Reason, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToLedgerEventResponse(ev))
}

// periodFrom lee from/to de la query. "to" sin hora incluye el día completo.
func periodFrom(c *fiber.Ctx) (domledger.Period, bool, error) {
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		return domledger.Period{}, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "from inválido", Fields: map[string]string{"from": "RFC3339 o YYYY-MM-DD"},
		})
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		return domledger.Period{}, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "to inválido", Fields: map[string]string{"to": "RFC3339 o YYYY-MM-DD"},
		})
	}
	return domledger.Period{From: from, To: to}, true, nil
}
