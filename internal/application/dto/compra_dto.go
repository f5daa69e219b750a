package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrearCompraRequest cuerpo para crear una orden de compra en borrador.
type CrearCompraRequest struct {
	ProveedorID string          `json:"proveedor_id"`
	MonedaID    string          `json:"moneda_id"`
	TipoCambio  decimal.Decimal `json:"tipo_cambio"`
}

// AgregarDetalleRequest línea nueva para una compra en borrador.
type AgregarDetalleRequest struct {
	PresentacionID       string          `json:"presentacion_id"`
	Cantidad             decimal.Decimal `json:"cantidad"`
	CostoUnitario        decimal.Decimal `json:"costo_unitario"`
	FechaEstimadaLlegada *time.Time      `json:"fecha_estimada_llegada,omitempty"`
}

// CompraDetalleDTO línea de una compra.
type CompraDetalleDTO struct {
	ID                   string          `json:"id"`
	PresentacionID       string          `json:"presentacion_id"`
	Cantidad             decimal.Decimal `json:"cantidad"`
	CostoUnitario        decimal.Decimal `json:"costo_unitario"`
	FechaEstimadaLlegada *time.Time      `json:"fecha_estimada_llegada,omitempty"`
	CantidadRecibida     decimal.Decimal `json:"cantidad_recibida"`
}

// CompraResponse proyección de una compra con sus líneas.
type CompraResponse struct {
	ID          string             `json:"id"`
	ProveedorID string             `json:"proveedor_id"`
	MonedaID    string             `json:"moneda_id"`
	TipoCambio  decimal.Decimal    `json:"tipo_cambio"`
	Estado      string             `json:"estado"`
	Detalles    []CompraDetalleDTO `json:"detalles"`
	CreatedAt   time.Time          `json:"created_at"`
}

// CambiarEstadoRequest cuerpo para una transición manual de la orden.
type CambiarEstadoRequest struct {
	Estado string `json:"estado"`
}

// RecepcionItemRequest ítem recibido contra una línea de compra.
type RecepcionItemRequest struct {
	CompraDetalleID  string          `json:"compra_detalle_id"`
	NumeroLote       string          `json:"numero_lote"`
	FechaFabricacion *time.Time      `json:"fecha_fabricacion,omitempty"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento,omitempty"`
	Cantidad         decimal.Decimal `json:"cantidad"`
}

// RegistrarRecepcionRequest cuerpo para registrar una recepción de mercadería.
type RegistrarRecepcionRequest struct {
	CompraID        string                 `json:"compra_id"`
	AlmacenID       string                 `json:"almacen_id"`
	NumeroDocumento string                 `json:"numero_documento"`
	Items           []RecepcionItemRequest `json:"items"`
}

// RecepcionResponse proyección de una recepción.
type RecepcionResponse struct {
	ID              string               `json:"id"`
	CompraID        string               `json:"compra_id"`
	AlmacenID       string               `json:"almacen_id"`
	NumeroDocumento string               `json:"numero_documento"`
	Estado          string               `json:"estado"`
	Detalles        []RecepcionDetalleDTO `json:"detalles"`
	CreatedAt       time.Time            `json:"created_at"`
}

// RecepcionDetalleDTO ítem recibido, con el lote que creó o incrementó.
type RecepcionDetalleDTO struct {
	ID              string          `json:"id"`
	CompraDetalleID string          `json:"compra_detalle_id"`
	LoteID          string          `json:"lote_id"`
	Cantidad        decimal.Decimal `json:"cantidad"`
}
