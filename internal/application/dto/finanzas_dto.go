package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrearTipoCambioRequest cuerpo para registrar una tasa de cambio.
type CrearTipoCambioRequest struct {
	MonedaOrigenID  string          `json:"moneda_origen_id"`
	MonedaDestinoID string          `json:"moneda_destino_id"`
	FechaVigencia   time.Time       `json:"fecha_vigencia"`
	Tasa            decimal.Decimal `json:"tasa"`
}

// TipoCambioDTO fila del historial de tasas.
type TipoCambioDTO struct {
	ID              string          `json:"id"`
	MonedaOrigenID  string          `json:"moneda_origen_id"`
	MonedaDestinoID string          `json:"moneda_destino_id"`
	FechaVigencia   time.Time       `json:"fecha_vigencia"`
	Tasa            decimal.Decimal `json:"tasa"`
}

// TiposCambioResponse página del historial de tasas.
type TiposCambioResponse struct {
	Tasas []TipoCambioDTO `json:"tasas"`
	Page  PageResponse    `json:"page"`
}

// ConversionResponse resultado de convertir un monto con la tasa vigente.
type ConversionResponse struct {
	MonedaOrigenID  string          `json:"moneda_origen_id"`
	MonedaDestinoID string          `json:"moneda_destino_id"`
	Monto           decimal.Decimal `json:"monto"`
	TasaUsada       decimal.Decimal `json:"tasa_usada"`
	Convertido      decimal.Decimal `json:"convertido"`
}
