package model

import "errors"

var (
	// Лента недоступна или не парсится, пропускаем только эту ленту
	ErrFetch = errors.New("feed fetch failed")
	// В записи нет обязательного поля, пропускаем только эту запись
	ErrEntryParse = errors.New("malformed feed entry")
	// Сообщение не доставлено. Такую новость не записываем ни в дедупликацию, ни в сводку
	ErrDelivery = errors.New("delivery failed")
	// Не удалось получить рыночные данные
	ErrDataSource = errors.New("market data unavailable")
)
