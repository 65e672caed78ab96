package fileconv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVToXLSXRoundTrip(t *testing.T) {
	e := New()
	ctx := context.Background()

	book, err := e.RequestConversion(ctx, []byte("name,qty\nApple,3\nPear,10\n"), CSV, XLSX, nil)
	require.NoError(t, err)
	assert.Equal(t, MIMEType(XLSX), book.MIMEType)

	csvOut, err := e.RequestConversion(ctx, book.Data, XLSX, CSV, nil)
	require.NoError(t, err)
	assert.Equal(t, "name,qty\nApple,3\nPear,10\n", string(csvOut.Data))

	jsonOut, err := e.RequestConversion(ctx, book.Data, XLSX, JSON, nil)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "name": "Apple",
    "qty": 3
  },
  {
    "name": "Pear",
    "qty": 10
  }
]`, string(jsonOut.Data))
}

func TestJSONToXLSX(t *testing.T) {
	e := New()
	ctx := context.Background()

	book, err := e.RequestConversion(ctx, []byte(`[{"a":1,"b":"x"},{"c":"y","a":2}]`), JSON, XLSX, nil)
	require.NoError(t, err)

	out, err := e.RequestConversion(ctx, book.Data, XLSX, JSON, nil)
	require.NoError(t, err)

	root, err := parseJSON(string(out.Data))
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1,"b":"x"},{"a":2,"c":"y"}]`, marshalJSON(root, ""))
}

func TestJSONToXLSXNested(t *testing.T) {
	book, err := jsonToXLSX(context.Background(), []byte(`{"n":{"k":[1,2]},"s":"v"}`), nil)
	require.NoError(t, err)

	rows, _, err := xlsxRows(book.Data, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"n", "s"}, rows[0])
	assert.Equal(t, []string{`{"k":[1,2]}`, "v"}, rows[1])
}

func TestSheetInvalid(t *testing.T) {
	e := New()
	ctx := context.Background()

	_, err := e.RequestConversion(ctx, []byte("not a workbook"), XLSX, CSV, nil)
	require.Error(t, err)
	info := Classify(err)
	assert.Equal(t, CategoryValidation, info.Category)
	assert.Equal(t, "Invalid Excel file.", info.Message)

	_, err = e.RequestConversion(ctx, []byte("not a workbook"), XLS, JSON, nil)
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, Classify(err).Category)

	_, err = e.RequestConversion(ctx, []byte(`{"a":`), JSON, XLSX, nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid JSON format detected.", Classify(err).Message)
}
