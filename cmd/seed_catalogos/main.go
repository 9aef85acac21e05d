// seed_catalogos genera una migración SQL que carga los catálogos de referencia
// (proveedores, bancos, plazos de pago, etc.) desde una exportación CSV del sistema anterior.
//
// Uso: go run ./cmd/seed_catalogos [-latin1] [-out ruta.sql] catalogos.csv
//
// Formato: separador ';', encabezado "catalogo;nombre;dato". dato es opcional y depende del catálogo:
// días en plazos-pago, RUT (se valida y normaliza) en proveedores y empresas, número en cuentas y nombre de categoría en productos.
// Por defecto escribe internal/infrastructure/postgres/migrations/000004_seed_catalogos.up.sql.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ordenes-api/pkg/rut"
)

// fila registro del CSV ya normalizado.
type fila struct {
	catalogo string
	nombre   string
	dato     string
}

// destino tabla y columna extra de cada catálogo.
type destino struct {
	tabla string
	extra string // columna que recibe "dato"; vacío si no aplica
}

var destinos = map[string]destino{
	"proveedores":   {"proveedores", "rut"},
	"empresas":      {"empresas", "rut"},
	"bancos":        {"bancos", ""},
	"plazos-pago":   {"plazos_pago", "dias"},
	"centros-costo": {"centros_costo", ""},
	"tipos-orden":   {"tipos_orden", ""},
	"cuentas":       {"cuentas", "numero"},
	"categorias":    {"categorias", ""},
	"productos":     {"productos", "categoria_id"},
}

// orden de escritura: categorías antes que productos.
var ordenCatalogos = []string{
	"empresas", "proveedores", "bancos", "plazos-pago", "centros-costo",
	"tipos-orden", "cuentas", "categorias", "productos",
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	outPath := flag.String("out", "", "archivo SQL de salida")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalogos [-latin1] [-out ruta.sql] catalogos.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	filas, err := leerCSV(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	if *outPath == "" {
		*outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "000004_seed_catalogos.up.sql")
	}
	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := escribirSQL(out, filas); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d registros\n", *outPath, len(filas))
}

// leerCSV valida encabezado, catálogo y dato de cada fila. Los errores indican la línea.
func leerCSV(r io.Reader) ([]fila, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(header[0], "\ufeff")), "catalogo") {
		return nil, errors.New(`encabezado esperado "catalogo;nombre;dato"`)
	}

	var filas []fila
	for linea := 2; ; linea++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", linea, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: faltan columnas", linea)
		}
		fl := fila{
			catalogo: strings.ToLower(strings.TrimSpace(rec[0])),
			nombre:   strings.TrimSpace(rec[1]),
		}
		if len(rec) > 2 {
			fl.dato = strings.TrimSpace(rec[2])
		}
		if _, ok := destinos[fl.catalogo]; !ok {
			return nil, fmt.Errorf("línea %d: catálogo desconocido %q", linea, fl.catalogo)
		}
		if fl.nombre == "" {
			return nil, fmt.Errorf("línea %d: nombre vacío", linea)
		}
		if fl.catalogo == "plazos-pago" {
			dias, err := strconv.Atoi(fl.dato)
			if err != nil || dias < 0 {
				return nil, fmt.Errorf("línea %d: días inválidos %q", linea, fl.dato)
			}
		}
		if (fl.catalogo == "proveedores" || fl.catalogo == "empresas") && fl.dato != "" {
			normalizado, err := rut.Normalizar(fl.dato)
			if err != nil {
				return nil, fmt.Errorf("línea %d: %w", linea, err)
			}
			fl.dato = normalizado
		}
		filas = append(filas, fl)
	}
	return filas, nil
}

// escribirSQL emite un INSERT idempotente por fila: no duplica nombres ya cargados.
func escribirSQL(w io.Writer, filas []fila) error {
	porCatalogo := map[string][]fila{}
	for _, f := range filas {
		porCatalogo[f.catalogo] = append(porCatalogo[f.catalogo], f)
	}

	var b strings.Builder
	b.WriteString("-- Catálogos de referencia importados del sistema anterior\n")
	b.WriteString("-- Generado por cmd/seed_catalogos\n")
	for _, cat := range ordenCatalogos {
		fs := porCatalogo[cat]
		if len(fs) == 0 {
			continue
		}
		d := destinos[cat]
		nombreCol := "nombre"
		if cat == "plazos-pago" {
			nombreCol = "descripcion"
		}
		fmt.Fprintf(&b, "\n-- %s (%d)\n", cat, len(fs))
		for _, f := range fs {
			cols, vals := nombreCol, quote(f.nombre)
			switch {
			case d.extra == "categoria_id" && f.dato != "":
				cols += ", categoria_id"
				vals += fmt.Sprintf(", (SELECT id FROM categorias WHERE nombre = %s LIMIT 1)", quote(f.dato))
			case d.extra == "dias":
				cols += ", dias"
				vals += ", " + f.dato
			case d.extra != "" && d.extra != "categoria_id" && f.dato != "":
				cols += ", " + d.extra
				vals += ", " + quote(f.dato)
			}
			fmt.Fprintf(&b, "INSERT INTO %s (%s)\nSELECT %s\nWHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s = %s);\n",
				d.tabla, cols, vals, d.tabla, nombreCol, quote(f.nombre))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
