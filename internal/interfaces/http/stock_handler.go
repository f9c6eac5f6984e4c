package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/dto"
	appstock "github.com/jhoicas/retail-ledger/internal/application/stock"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// StockHandler movimientos de inventario, productos y sucursales (protegido).
type StockHandler struct {
	uc  *appstock.UseCase
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *appstock.UseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{uc: uc, log: log}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "product_id, type (in|out|adjust_set|adjust_delta), quantity"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ApplyMovementRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	res, err := h.uc.Apply(c.UserContext(), appstock.ApplyInput{
		ProductID:       in.ProductID,
		Type:            entity.MovementType(in.Type),
		Quantity:        in.Quantity,
		ReferenceType:   in.ReferenceType,
		ReferenceNumber: in.ReferenceNumber,
		Date:            in.Date,
		UserID:          userID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toApplyResponse(res))
}

// ReverseMovement godoc
// @Summary      Reversar un movimiento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      201  {object}  dto.ApplyMovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id}/reverse [post]
func (h *StockHandler) ReverseMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	res, err := h.uc.Reverse(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toApplyResponse(res))
}

// Movements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to      query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        limit   query  int     false  "máx. 200"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/products/{id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	period, ok, err := periodFrom(c)
	if !ok {
		return err
	}
	page, ok, err := pageFrom(c)
	if !ok {
		return err
	}
	list, err := h.uc.Movements(c.UserContext(), c.Params("id"), period.From, period.To, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.ToMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// Reconcile godoc
// @Summary      Reconstruir la cantidad desde el historial
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ReconcileResponse
// @Router       /api/stock/products/{id}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Rebuild(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos en low_stock u out_of_stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "vacío = todas, main = bodega principal"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/stock/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.UserContext(), c.Query("branch_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ProductListResponse{Items: list, Total: len(list)})
}

// CreateProduct godoc
// @Summary      Crear producto en una ubicación
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "name, code, min_quantity, branch_id (null = principal), initial_quantity"
// @Success      201   {object}  dto.ProductStockDTO
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *StockHandler) CreateProduct(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateProductRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	p, err := h.uc.CreateProduct(c.UserContext(), appstock.CreateProductInput{
		Name:            in.Name,
		Code:            in.Code,
		MinQuantity:     in.MinQuantity,
		BranchID:        in.BranchID,
		InitialQuantity: in.InitialQuantity,
		UserID:          userID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appstock.ProductStock(p))
}

// Products godoc
// @Summary      Listar productos con su estado
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "vacío = todas, main = bodega principal"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *StockHandler) Products(c *fiber.Ctx) error {
	list, err := h.uc.Products(c.UserContext(), c.Query("branch_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ProductListResponse{Items: list, Total: len(list)})
}

// CreateBranch godoc
// @Summary      Crear sucursal
// @Tags         branches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBranchRequest  true  "name, address"
// @Success      201   {object}  dto.BranchResponse
// @Router       /api/branches [post]
func (h *StockHandler) CreateBranch(c *fiber.Ctx) error {
	var in dto.CreateBranchRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	b, err := h.uc.CreateBranch(c.UserContext(), in.Name, in.Address)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBranchResponses([]*entity.Branch{b})[0])
}

// Branches godoc
// @Summary      Listar sucursales
// @Tags         branches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BranchResponse
// @Router       /api/branches [get]
func (h *StockHandler) Branches(c *fiber.Ctx) error {
	list, err := h.uc.Branches(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToBranchResponses(list))
}

func toApplyResponse(res *appstock.ApplyResult) dto.ApplyMovementResponse {
	return dto.ApplyMovementResponse{
		Movement:    dto.ToMovementResponse(res.Movement),
		NewQuantity: res.NewQuantity,
		Status:      string(res.Status),
	}
}
