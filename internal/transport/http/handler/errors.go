package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kipusaplus/kipus-api/internal/domain"
)

const (
	errInternalServer   = "Error interno del servidor"
	errInvalidBody      = "Cuerpo de la solicitud inválido"
	errInvalidID        = "Identificador inválido"
	errValidationPrefix = "Datos inválidos"
	errDuplicateEmail   = "El correo electrónico ya está registrado"
	errUnknownRegion    = "La región seleccionada no existe"
	errUnknownCommune   = "La comuna no existe o no pertenece a la región seleccionada"
	errInvalidCreds     = "Credenciales inválidas"
	errMissingToken     = "Token no proporcionado"
	errTokenInvalid     = "Token inválido"
	errTokenExpired     = "Token expirado"
	errWrongPurpose     = "Token no válido para esta operación"
	errForbidden        = "Acceso denegado: se requieren permisos de administrador"
	errUserNotFound     = "Usuario no encontrado"
	errDwellingNotFound = "Vivienda no encontrada"
	errDwellingExists   = "El usuario ya tiene una vivienda registrada"
	errEvalNotFound     = "Evaluación no encontrada"
	errRecordNotFound   = "Registro no encontrado"
	errResetCode        = "Código inválido o expirado"
	errDuplicateEval    = "Ya existe una evaluación idéntica guardada"
	errUnknownReference = "El combustible o la solución seleccionada no existe"
	errAlreadyRated     = "Ya enviaste una valoración hoy"
	errUnknownTable     = "Tabla no permitida"
	errNotInsertable    = "La tabla no admite nuevos registros"
	errUnknownColumn    = "Columna no permitida"
	errNothingToWrite   = "No hay campos para actualizar"
	errSelfDelete       = "No puedes eliminar tu propia cuenta"
	msgResetRequested   = "Si el correo está registrado, recibirás un código de recuperación"
	msgCodeVerified     = "Código verificado correctamente"
	msgPasswordChanged  = "Contraseña actualizada exitosamente"
	msgRegistered       = "Usuario registrado exitosamente"
	msgLoggedIn         = "Login exitoso"
	msgDeleted          = "Eliminado exitosamente"
	msgCreated          = "Registro creado exitosamente"
	msgDwellingCreated  = "Vivienda creada exitosamente"
	msgTokenValid       = "Token válido"
)

type errorMapping struct {
	target error
	status int
	msg    string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{domain.ErrDuplicateEmail, http.StatusBadRequest, errDuplicateEmail},
	{domain.ErrUnknownRegion, http.StatusBadRequest, errUnknownRegion},
	{domain.ErrUnknownCommune, http.StatusBadRequest, errUnknownCommune},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, errInvalidCreds},
	{domain.ErrMissingToken, http.StatusUnauthorized, errMissingToken},
	{domain.ErrTokenExpired, http.StatusUnauthorized, errTokenExpired},
	{domain.ErrWrongTokenPurpose, http.StatusUnauthorized, errWrongPurpose},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, errTokenInvalid},
	{domain.ErrForbidden, http.StatusForbidden, errForbidden},
	{domain.ErrUserNotFound, http.StatusNotFound, errUserNotFound},
	{domain.ErrDwellingNotFound, http.StatusNotFound, errDwellingNotFound},
	{domain.ErrDwellingExists, http.StatusBadRequest, errDwellingExists},
	{domain.ErrEvaluationNotFound, http.StatusNotFound, errEvalNotFound},
	{domain.ErrRecordNotFound, http.StatusNotFound, errRecordNotFound},
	{domain.ErrInvalidResetCode, http.StatusBadRequest, errResetCode},
	{domain.ErrDuplicateEvaluation, http.StatusConflict, errDuplicateEval},
	{domain.ErrUnknownReference, http.StatusBadRequest, errUnknownReference},
	{domain.ErrAlreadyRatedToday, http.StatusBadRequest, errAlreadyRated},
	{domain.ErrUnknownTable, http.StatusBadRequest, errUnknownTable},
	{domain.ErrNotInsertable, http.StatusBadRequest, errNotInsertable},
	{domain.ErrNothingToWrite, http.StatusBadRequest, errNothingToWrite},
	{domain.ErrSelfDelete, http.StatusBadRequest, errSelfDelete},
}

// classify maps err to a status and a client-facing message. Unknown errors
// are 500 with the generic message.
func classify(err error) (int, string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errValidationPrefix + ": " + verr.Error()
	}
	if errors.Is(err, domain.ErrUnknownColumn) {
		// The wrapped message ends with the offending column name.
		msg := errUnknownColumn
		if i := strings.LastIndex(err.Error(), ": "); i >= 0 {
			msg += ": " + err.Error()[i+2:]
		}
		return http.StatusBadRequest, msg
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return m.status, m.msg
		}
	}
	return http.StatusInternalServerError, errInternalServer
}
