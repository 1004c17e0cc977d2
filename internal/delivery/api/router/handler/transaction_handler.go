package handler

import (
	"log/slog"
	"net/http"

	"fintracker/internal/delivery/api/response"
	"fintracker/internal/errors"
	"fintracker/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type TransactionHandlerParams struct {
	fx.In

	TransactionUC usecase.TransactionUsecase
	Logger        *slog.Logger
}

type TransactionHandler struct {
	transactionUC usecase.TransactionUsecase
	logger        *slog.Logger
}

func NewTransactionHandler(params TransactionHandlerParams) *TransactionHandler {
	return &TransactionHandler{
		transactionUC: params.TransactionUC,
		logger:        params.Logger,
	}
}

func (h *TransactionHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.transactionUC.CreateTransaction(c.Request().Context(), userID, &usecase.CreateTransactionInput{
		Description: req.Description,
		Amount:      *req.Amount,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toTransactionResponse(detail))
}

func (h *TransactionHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	details, err := h.transactionUC.ListTransactions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTransactionResponses(details))
}

func (h *TransactionHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	detail, err := h.transactionUC.GetTransaction(c.Request().Context(), userID, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTransactionResponse(detail))
}

func (h *TransactionHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req UpdateTransactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.transactionUC.UpdateTransaction(c.Request().Context(), userID, &usecase.UpdateTransactionInput{
		ID:          req.ID,
		Description: req.Description,
		Amount:      *req.Amount,
		Date:        req.Date,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTransactionResponse(detail))
}

func (h *TransactionHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req IDRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.transactionUC.DeleteTransaction(c.Request().Context(), userID, req.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTransactionResponse(detail))
}
