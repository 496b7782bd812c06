package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	student := Student{ID: 3, Name: "Alexander Petrov", BirthDate: NewDate(2000, time.January, 2)}

	data, err := json.Marshal(student)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":"Alexander Petrov","birth_date":"2000-01-02"}`, string(data))

	var decoded Student
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, student.BirthDate.String(), decoded.BirthDate.String())
}

func TestDateUnmarshalRejectsBadInput(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"02/01/2000"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20000102`), &d))
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want string
	}{
		{name: "time from postgres", src: time.Date(1999, 12, 31, 0, 0, 0, 0, time.Local), want: "1999-12-31"},
		{name: "text from sqlite", src: "2001-05-06", want: "2001-05-06"},
		{name: "bytes", src: []byte("2001-05-06"), want: "2001-05-06"},
		{name: "timestamp text", src: "2001-05-06T00:00:00Z", want: "2001-05-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2000, time.January, 2).Value()
	require.NoError(t, err)
	assert.Equal(t, "2000-01-02", v)
}
