package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const csvBase = `catalogo;nombre;dato
productos;Resma carta;Papelería
categorias;Papelería;
plazos-pago;30 días;30
proveedores;O'Higgins Ltda.;76.123.456-0
bancos;Banco Estado;
`

func TestLeerCSV_FilasValidas(t *testing.T) {
	filas, err := leerCSV(strings.NewReader(csvBase))
	require.NoError(t, err)
	require.Len(t, filas, 5)
	assert.Equal(t, fila{catalogo: "productos", nombre: "Resma carta", dato: "Papelería"}, filas[0])
}

func TestLeerCSV_CatalogoDesconocido(t *testing.T) {
	_, err := leerCSV(strings.NewReader("catalogo;nombre\nclientes;Juan\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 2")
}

func TestLeerCSV_PlazoSinDias(t *testing.T) {
	_, err := leerCSV(strings.NewReader("catalogo;nombre;dato\nplazos-pago;Contado;x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "días inválidos")
}

func TestLeerCSV_RUTInvalido(t *testing.T) {
	_, err := leerCSV(strings.NewReader("catalogo;nombre;dato\nempresas;Casa Matriz;12.345.678-9\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "línea 2")
	assert.Contains(t, err.Error(), "dígito verificador")
}

func TestLeerCSV_RUTNormalizado(t *testing.T) {
	filas, err := leerCSV(strings.NewReader(csvBase))
	require.NoError(t, err)
	assert.Equal(t, "76123456-0", filas[3].dato)
}

func TestLeerCSV_EncabezadoInvalido(t *testing.T) {
	_, err := leerCSV(strings.NewReader("tabla;valor\nbancos;BCI\n"))
	assert.Error(t, err)
}

func TestLeerCSV_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("catalogo;nombre\nbancos;Crédito Ñuble\n")
	require.NoError(t, err)

	filas, err := leerCSV(transform.NewReader(strings.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "Crédito Ñuble", filas[0].nombre)
}

func TestEscribirSQL_OrdenYEscapado(t *testing.T) {
	filas, err := leerCSV(strings.NewReader(csvBase))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, escribirSQL(&buf, filas))
	sql := buf.String()

	assert.Contains(t, sql, "'O''Higgins Ltda.', '76123456-0'")
	assert.Contains(t, sql, "INSERT INTO plazos_pago (descripcion, dias)\nSELECT '30 días', 30")
	assert.Contains(t, sql, "(SELECT id FROM categorias WHERE nombre = 'Papelería' LIMIT 1)")
	assert.Less(t, strings.Index(sql, "INSERT INTO categorias"), strings.Index(sql, "INSERT INTO productos"),
		"las categorías deben cargarse antes que los productos")
	assert.Less(t, strings.Index(sql, "INSERT INTO proveedores"), strings.Index(sql, "INSERT INTO bancos"))
}
