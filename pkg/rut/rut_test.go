package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitoVerificador_Casos(t *testing.T) {
	casos := map[string]byte{
		"11111111": '1',
		"12345678": '5',
		"10000013": 'K',
		"10000004": '0',
		"5126663":  '3',
	}
	for cuerpo, esperado := range casos {
		dv, err := DigitoVerificador(cuerpo)
		require.NoError(t, err, cuerpo)
		assert.Equal(t, esperado, dv, cuerpo)
	}
}

func TestDigitoVerificador_CuerpoInvalido(t *testing.T) {
	_, err := DigitoVerificador("12a4")
	assert.Error(t, err)
	_, err = DigitoVerificador("")
	assert.Error(t, err)
}

func TestNormalizar_Formatos(t *testing.T) {
	for _, in := range []string{"12.345.678-5", "12345678-5", "123456785", " 12345678-5 "} {
		out, err := Normalizar(in)
		require.NoError(t, err, in)
		assert.Equal(t, "12345678-5", out)
	}
	out, err := Normalizar("10.000.013-k")
	require.NoError(t, err)
	assert.Equal(t, "10000013-K", out)
}

func TestNormalizar_DigitoIncorrecto(t *testing.T) {
	err := Validar("12.345.678-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esperado 5")
}

func TestNormalizar_DemasiadoCorto(t *testing.T) {
	assert.Error(t, Validar("5"))
	assert.Error(t, Validar("0-0"))
}
