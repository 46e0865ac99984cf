package handler

import (
	"time"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

// userResponse never includes the password hash.
type userResponse struct {
	ID           int64       `json:"id"`
	Email        string      `json:"correo"`
	Name         string      `json:"nombre_completo"`
	Role         domain.Role `json:"tipo_usuario"`
	RegisteredAt *time.Time  `json:"fecha_registro,omitempty"`
}

func toUser(u *domain.User) userResponse {
	out := userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
	if !u.RegisteredAt.IsZero() {
		t := u.RegisteredAt
		out.RegisteredAt = &t
	}
	return out
}

type sessionResponse struct {
	User  userResponse `json:"usuario"`
	Token string       `json:"token"`
}

type dwellingResponse struct {
	ID          int64   `json:"id_vivienda"`
	Region      string  `json:"region"`
	CommuneID   int64   `json:"comuna"`
	CommuneName string  `json:"nombre_comuna"`
	Occupants   int     `json:"cantidad_personas"`
	Area1       float64 `json:"superficie_1"`
	Area2       float64 `json:"superficie_2"`
}

func toDwelling(d *domain.Dwelling) dwellingResponse {
	return dwellingResponse{
		ID:          d.ID,
		Region:      d.Region,
		CommuneID:   d.CommuneID,
		CommuneName: d.CommuneName,
		Occupants:   d.Occupants,
		Area1:       d.Area1,
		Area2:       d.Area2,
	}
}

type regionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type communeResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"nombre"`
	RegionID int64  `json:"id_region"`
}

type heatingResponse struct {
	ID                 int64     `json:"id"`
	Area1              float64   `json:"superficie_1"`
	Area2              float64   `json:"superficie_2"`
	WindowArea1        float64   `json:"area_ventana_1"`
	WindowArea2        float64   `json:"area_ventana_2"`
	FuelID             int64     `json:"id_combustible"`
	FuelName           *string   `json:"combustible_nombre,omitempty"`
	AnnualConsumption  float64   `json:"consumo_anual"`
	WallSolution1ID    *int64    `json:"id_solucion_muro1"`
	WallSolution1Name  *string   `json:"solucion_muro1_nombre,omitempty"`
	WallSolution2ID    *int64    `json:"id_solucion_muro2"`
	WallSolution2Name  *string   `json:"solucion_muro2_nombre,omitempty"`
	RoofSolutionID     *int64    `json:"id_solucion_techo"`
	RoofSolutionName   *string   `json:"solucion_techo_nombre,omitempty"`
	WindowSolutionID   *int64    `json:"id_solucion_ventana"`
	WindowSolutionName *string   `json:"solucion_ventana_nombre,omitempty"`
	Efficiency         float64   `json:"eficiencia"`
	Investment         float64   `json:"inversion"`
	AnnualSavings      float64   `json:"ahorro_anual"`
	Payback            float64   `json:"payback"`
	CO2Reduction       float64   `json:"reduccion_co2"`
	CreatedAt          time.Time `json:"fecha_creacion"`
}

func toHeating(e *domain.HeatingEvaluation) heatingResponse {
	return heatingResponse{
		ID:                 e.ID,
		Area1:              e.Area1,
		Area2:              e.Area2,
		WindowArea1:        e.WindowArea1,
		WindowArea2:        e.WindowArea2,
		FuelID:             e.FuelID,
		FuelName:           e.FuelName,
		AnnualConsumption:  e.AnnualConsumption,
		WallSolution1ID:    e.WallSolution1ID,
		WallSolution1Name:  e.WallSolution1Name,
		WallSolution2ID:    e.WallSolution2ID,
		WallSolution2Name:  e.WallSolution2Name,
		RoofSolutionID:     e.RoofSolutionID,
		RoofSolutionName:   e.RoofSolutionName,
		WindowSolutionID:   e.WindowSolutionID,
		WindowSolutionName: e.WindowSolutionName,
		Efficiency:         e.Efficiency,
		Investment:         e.Investment,
		AnnualSavings:      e.AnnualSavings,
		Payback:            e.Payback,
		CO2Reduction:       e.CO2Reduction,
		CreatedAt:          e.CreatedAt,
	}
}

type waterResponse struct {
	ID                int64     `json:"id"`
	WaterPrice        float64   `json:"precio_agua"`
	Consumption       int       `json:"consumo_agua_potable"`
	SewerService      *int      `json:"servicio_alcantarillado"`
	Showers           int       `json:"cantidad_duchas"`
	Sinks             int       `json:"cantidad_lavamanos"`
	Toilets           int       `json:"cantidad_wc"`
	Dishwashers       int       `json:"cantidad_lavaplatos"`
	ShowerFixture     *int      `json:"medida_ducha"`
	SinkFixture       *int      `json:"medida_lavamanos"`
	ToiletFixture     *int      `json:"medida_wc"`
	DishwasherFixture *int      `json:"medida_lavaplatos"`
	SavingsM3PerMonth float64   `json:"ahorro_m3_mes"`
	SavingsMoney      float64   `json:"ahorro_dinero"`
	Investment        int       `json:"inversion"`
	PaybackMonths     int       `json:"retorno"`
	BathtubEquivalent float64   `json:"equivalente_tinas"`
	CreatedAt         time.Time `json:"fecha_creacion"`
}

func toWater(e *domain.WaterEvaluation) waterResponse {
	return waterResponse{
		ID:                e.ID,
		WaterPrice:        e.WaterPrice,
		Consumption:       e.Consumption,
		SewerService:      e.SewerService,
		Showers:           e.Showers,
		Sinks:             e.Sinks,
		Toilets:           e.Toilets,
		Dishwashers:       e.Dishwashers,
		ShowerFixture:     e.ShowerFixture,
		SinkFixture:       e.SinkFixture,
		ToiletFixture:     e.ToiletFixture,
		DishwasherFixture: e.DishwasherFixture,
		SavingsM3PerMonth: e.SavingsM3PerMonth,
		SavingsMoney:      e.SavingsMoney,
		Investment:        e.Investment,
		PaybackMonths:     e.PaybackMonths,
		BathtubEquivalent: e.BathtubEquivalent,
		CreatedAt:         e.CreatedAt,
	}
}

type commentResponse struct {
	ID          int64              `json:"id"`
	Type        domain.CommentType `json:"tipo"`
	Message     string             `json:"descripcion"`
	Date        time.Time          `json:"fecha"`
	UserID      int64              `json:"id_usuario"`
	AuthorName  string             `json:"nombre_completo,omitempty"`
	AuthorEmail string             `json:"correo,omitempty"`
}

func toComment(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:          c.ID,
		Type:        c.Type,
		Message:     c.Message,
		Date:        c.Date,
		UserID:      c.UserID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
	}
}

type ratingResponse struct {
	ID          int64  `json:"id"`
	Value       int    `json:"valor"`
	Feedback    string `json:"feedback"`
	Date        string `json:"fecha"`
	UserID      int64  `json:"id_usuario"`
	AuthorName  string `json:"nombre_completo,omitempty"`
	AuthorEmail string `json:"correo,omitempty"`
}

func toRating(r *domain.Rating) ratingResponse {
	return ratingResponse{
		ID:          r.ID,
		Value:       r.Value,
		Feedback:    r.Feedback,
		Date:        r.Date.Format(time.DateOnly),
		UserID:      r.UserID,
		AuthorName:  r.AuthorName,
		AuthorEmail: r.AuthorEmail,
	}
}

type ratingStatsResponse struct {
	Average      float64        `json:"promedio"`
	Total        int            `json:"total"`
	Distribution map[string]int `json:"distribucion"`
}

func toRatingStats(s *domain.RatingStats) ratingStatsResponse {
	dist := make(map[string]int, len(s.Distribution))
	for i, n := range s.Distribution {
		dist[string(rune('1'+i))] = n
	}
	return ratingStatsResponse{Average: s.Average, Total: s.Total, Distribution: dist}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
