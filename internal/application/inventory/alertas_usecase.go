package inventory

import (
	"context"
	"time"

	"github.com/grupodelsur/distribuidora-api/internal/application/dto"
	domaininv "github.com/grupodelsur/distribuidora-api/internal/domain/inventory"
	"github.com/grupodelsur/distribuidora-api/internal/domain/repository"
	"github.com/grupodelsur/distribuidora-api/pkg/textutil"
)

// AlertasUseCase deriva el feed de alertas del inventario: lotes por vencer y
// posiciones bajo el stock mínimo, con severidad y agregados.
type AlertasUseCase struct {
	posRepo repository.PosicionStockRepository
	reloj   func() time.Time
}

// NewAlertasUseCase construye el caso de uso. reloj nil usa time.Now.
func NewAlertasUseCase(posRepo repository.PosicionStockRepository, reloj func() time.Time) *AlertasUseCase {
	if reloj == nil {
		reloj = time.Now
	}
	return &AlertasUseCase{posRepo: posRepo, reloj: reloj}
}

// FiltroAlertasInput filtros del feed de alertas.
type FiltroAlertasInput struct {
	Tipo      string
	Severidad string
	AlmacenID string
	Q         string
	Page      dto.PageRequest
}

// Listar clasifica las posiciones relevantes y devuelve la página pedida en
// el orden de prioridad del feed (severidad, días para vencer, SKU).
func (uc *AlertasUseCase) Listar(ctx context.Context, in FiltroAlertasInput) (*dto.AlertasResponse, error) {
	in.Page.DefaultPage()
	alertas, err := uc.clasificadas(ctx, in)
	if err != nil {
		return nil, err
	}

	total := len(alertas)
	desde := in.Page.Offset
	if desde > total {
		desde = total
	}
	hasta := desde + in.Page.Limit
	if hasta > total {
		hasta = total
	}

	resp := &dto.AlertasResponse{
		Alertas: make([]dto.AlertaDTO, 0, hasta-desde),
		Page:    dto.PageResponse{Limit: in.Page.Limit, Offset: in.Page.Offset, Total: total},
	}
	for _, a := range alertas[desde:hasta] {
		resp.Alertas = append(resp.Alertas, alertaToDTO(a))
	}
	return resp, nil
}

// Resumen devuelve los conteos por severidad y tipo, más el top-N ordenado por
// la misma prioridad del listado.
func (uc *AlertasUseCase) Resumen(ctx context.Context, in FiltroAlertasInput, topN int) (*dto.ResumenAlertasResponse, error) {
	if topN <= 0 || topN > 50 {
		topN = 5
	}
	alertas, err := uc.clasificadas(ctx, in)
	if err != nil {
		return nil, err
	}
	resumen := domaininv.Resumir(alertas)

	if topN > len(alertas) {
		topN = len(alertas)
	}
	top := make([]dto.AlertaDTO, 0, topN)
	for _, a := range alertas[:topN] {
		top = append(top, alertaToDTO(a))
	}
	return &dto.ResumenAlertasResponse{
		Total:        resumen.Total,
		PorSeveridad: resumen.PorSeveridad,
		PorTipo:      resumen.PorTipo,
		Top:          top,
	}, nil
}

func (uc *AlertasUseCase) clasificadas(_ context.Context, in FiltroAlertasInput) ([]domaininv.Alerta, error) {
	filtro := repository.FiltroPosiciones{
		AlmacenID:   in.AlmacenID,
		Q:           textutil.Normalizar(in.Q),
		SoloAlertas: true,
	}
	// El filtro de severidad/tipo se aplica tras clasificar; el repositorio
	// solo acota por almacén, texto y relevancia.
	posiciones, _, err := uc.posRepo.Listar(filtro, maxPosicionesAlertas, 0)
	if err != nil {
		return nil, err
	}

	todas := domaininv.ClasificarAlertas(posiciones, uc.reloj())
	if in.Tipo == "" && in.Severidad == "" {
		return todas, nil
	}
	filtradas := todas[:0:0]
	for _, a := range todas {
		if in.Tipo != "" && a.Tipo != in.Tipo {
			continue
		}
		if in.Severidad != "" && a.Severidad != in.Severidad {
			continue
		}
		filtradas = append(filtradas, a)
	}
	return filtradas, nil
}

// maxPosicionesAlertas acota cuántas posiciones relevantes se clasifican por
// pedido; el repositorio ya descarta lotes sin vencimiento ni mínimo.
const maxPosicionesAlertas = 10000

func alertaToDTO(a domaininv.Alerta) dto.AlertaDTO {
	return dto.AlertaDTO{
		LoteID:           a.LoteID,
		PresentacionID:   a.PresentacionID,
		SKU:              a.SKU,
		Nombre:           a.Nombre,
		AlmacenID:        a.AlmacenID,
		NumeroLote:       a.NumeroLote,
		Tipo:             a.Tipo,
		Severidad:        a.Severidad,
		FechaVencimiento: a.FechaVencimiento,
		DiasParaVencer:   a.DiasParaVencer,
		Disponible:       a.Disponible,
		StockMinimo:      a.StockMinimo,
	}
}
