package providerservice

import "errors"

var (
	// ErrProviderNotFound возвращается, когда провайдер не найден
	ErrProviderNotFound = errors.New("providerservice: provider not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("providerservice: service not found")

	// ErrInvalidResponse возвращается при некорректном ответе сервиса каталога
	ErrInvalidResponse = errors.New("providerservice: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("providerservice: internal error")
)
