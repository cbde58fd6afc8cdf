// Package resthttp реализует HTTP-интерфейс выдачи записей миссий поверх хранилища.
// Основные эндпоинты:
//   - GET /file/download/* — отдаёт файл вложением: целиком (200), один диапазон (206)
//     или несколько диапазонов multipart/byteranges (206).
//   - GET /file/stream/* — то же, но для встраивания: без Content-Disposition и без запрета фреймов.
//   - GET /health — состояние сервиса и выбранный backend хранилища.
//   - GET /metrics — prometheus-метрики.
//
// Вне debug-режима ключ сессии берётся из query-параметра sessionid или одноимённой cookie.
package resthttp
