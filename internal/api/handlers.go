package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartorder/internal/catalog"
)

// marshalOrdered renders one record with its columns in table order, nulls
// for columns the record never got. encoding/json sorts map keys, which
// would hide the table's real column order from clients that infer their
// schema from the first row.
func marshalOrdered(rec catalog.Record, fields []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(rec[f])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalCollection(records []catalog.Record, fields []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range records {
		if i > 0 {
			buf.WriteByte(',')
		}
		row, err := marshalOrdered(rec, fields)
		if err != nil {
			return nil, err
		}
		buf.Write(row)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func statusForErrors(errs []FieldError) int {
	for _, e := range errs {
		if e.Code == ErrNotFound {
			return http.StatusNotFound
		}
	}
	return http.StatusBadRequest
}

func abortWithErrors(c *gin.Context, errs []FieldError) {
	msg := "solicitud inválida"
	if len(errs) > 0 {
		msg = errs[0].Message
	}
	c.JSON(statusForErrors(errs), gin.H{"message": msg, "errors": errs})
}

const jsonContentType = "application/json; charset=utf-8"

// GET /parametros/catalogos/:tabla
func ListHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabla := c.Param("tabla")
		records, fields, ok := storage.List(tabla)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "catálogo no encontrado"})
			return
		}
		payload, err := marshalCollection(records, fields)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.Data(http.StatusOK, jsonContentType, payload)
	}
}

// POST /parametros/catalogos/:tabla
func CreateHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabla := c.Param("tabla")
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "JSON inválido"})
			return
		}
		rec, order, errs := storage.Insert(c.Request.Context(), tabla, fields)
		if len(errs) > 0 {
			abortWithErrors(c, errs)
			return
		}
		payload, err := marshalOrdered(rec, order)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.Data(http.StatusCreated, jsonContentType, payload)
	}
}

type updateFieldReq struct {
	Campo   string `json:"campo"`
	Valor   any    `json:"valor"`
	IDCampo string `json:"id_campo"`
	IDValor string `json:"id_valor"`
}

// PUT /parametros/catalogos/:tabla — updates exactly one field of exactly
// one record, mirroring the per-field submission discipline of the console.
func UpdateFieldHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabla := c.Param("tabla")
		var req updateFieldReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "JSON inválido"})
			return
		}
		rec, order, errs := storage.UpdateField(c.Request.Context(), tabla, req.Campo, req.Valor, req.IDCampo, req.IDValor)
		if len(errs) > 0 {
			abortWithErrors(c, errs)
			return
		}
		payload, err := marshalOrdered(rec, order)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}
		c.Data(http.StatusOK, jsonContentType, payload)
	}
}

type deleteReq struct {
	ColumnaID string `json:"columna_id"`
	ValorID   string `json:"valor_id"`
}

// DELETE /parametros/catalogos/:tabla
func DeleteHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		tabla := c.Param("tabla")
		var req deleteReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "JSON inválido"})
			return
		}
		if errs := storage.Delete(c.Request.Context(), tabla, req.ColumnaID, req.ValorID); len(errs) > 0 {
			abortWithErrors(c, errs)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
