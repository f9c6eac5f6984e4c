package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	apptransfer "github.com/jhoicas/retail-ledger/internal/application/transfer"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// TransferHandler traslados entre ubicaciones (protegido).
type TransferHandler struct {
	uc  *apptransfer.UseCase
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *apptransfer.UseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Solicitar traslado
// @Description  Crea un registro pending por ítem, todos con el mismo transfer_number.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "from_branch_id (null = principal), to_branch_id, items"
// @Success      201   {object}  dto.TransferListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	items := make([]apptransfer.Item, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, apptransfer.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	list, err := h.uc.Request(c.UserContext(), apptransfer.RequestInput{
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Items:        items,
		Notes:        in.Notes,
		UserID:       userID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferListResponse{
		Items: dto.ToTransferResponses(list),
		Page:  dto.PageResponse{Count: len(list)},
	})
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status           query  string  false  "pending|approved|in_transit|completed|cancelled"
// @Param        transfer_number  query  string  false  "TRF-YYYYMMDD-XXXXXX"
// @Param        limit            query  int     false  "máx. 200"
// @Param        offset           query  int     false  "desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	page, ok, err := pageFrom(c)
	if !ok {
		return err
	}
	filter := repository.TransferFilter{
		Status:         entity.TransferStatus(c.Query("status")),
		TransferNumber: c.Query("transfer_number"),
	}
	list, err := h.uc.List(c.UserContext(), filter, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferListResponse{
		Items: dto.ToTransferResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(list)},
	})
}

// Get godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Advance godoc
// @Summary      Avanzar el estado de un traslado
// @Description  approved y cancelled solo para admin; in_transit mueve el stock del origen, completed lo acredita en destino.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del traslado"
// @Param        body  body  dto.AdvanceTransferRequest  true  "status"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/advance [post]
func (h *TransferHandler) Advance(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdvanceTransferRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	target := entity.TransferStatus(in.Status)
	if (target == entity.TransferApproved || target == entity.TransferCancelled) && GetRole(c) != entity.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo admin aprueba o cancela traslados"})
	}
	t, err := h.uc.Advance(c.UserContext(), c.Params("id"), target, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Reverse godoc
// @Summary      Compensar un traslado completado
// @Description  Crea un traslado pending en sentido contrario; el original no cambia.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado completado"
// @Success      201  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/reverse [post]
func (h *TransferHandler) Reverse(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	t, err := h.uc.Reverse(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransferResponse(t))
}
