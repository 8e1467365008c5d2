package building

import "errors"

var (
	// ErrMalformedLink вертикальная связь ссылается на отсутствующий этаж или клетку
	ErrMalformedLink = errors.New("malformed vertical link reference")

	// ErrMalformedSnapshot нарушена структура здания (размеры сетки, коды клеток, комнаты)
	ErrMalformedSnapshot = errors.New("malformed building snapshot")
)
